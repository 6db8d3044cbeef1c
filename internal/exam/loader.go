package exam

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/eduos-project/proctor-backend/internal/model"
)

// ConfigError reports an exam source that is missing, malformed, or
// structurally invalid. Load never returns a partial Exam alongside one.
type ConfigError struct {
	Source string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("exam source %q: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("exam source %q: %s", e.Source, e.Reason)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Loader reads immutable exam definitions from a directory of JSON files.
type Loader struct {
	dir string
}

// NewLoader creates a Loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load reads and validates the exam definition named by source (a file name
// without path separators, ".json" optional). Any structural violation
// aborts the load entirely.
func (l *Loader) Load(source string) (*model.Exam, error) {
	name := filepath.Base(source)
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}

	raw, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		return nil, &ConfigError{Source: source, Reason: "cannot read exam file", Err: err}
	}

	var exam model.Exam
	if err := json.Unmarshal(raw, &exam); err != nil {
		return nil, &ConfigError{Source: source, Reason: "malformed JSON", Err: err}
	}

	if err := validate(&exam); err != nil {
		return nil, &ConfigError{Source: source, Reason: err.Error()}
	}

	if exam.Title == "" {
		exam.Title = strings.TrimSuffix(name, ".json")
	}

	return &exam, nil
}

// Save validates and writes a new exam definition named by source into the
// loader's directory. Creation only: an existing source is never replaced.
// The same validation as Load applies, so a saved exam always loads.
func (l *Loader) Save(source string, exam *model.Exam) error {
	name := filepath.Base(source)
	if !strings.HasSuffix(name, ".json") {
		name += ".json"
	}

	if err := validate(exam); err != nil {
		return &ConfigError{Source: source, Reason: err.Error()}
	}
	if exam.Title == "" {
		exam.Title = strings.TrimSuffix(name, ".json")
	}

	raw, err := json.MarshalIndent(exam, "", "  ")
	if err != nil {
		return &ConfigError{Source: source, Reason: "cannot encode exam", Err: err}
	}
	raw = append(raw, '\n')

	f, err := os.OpenFile(filepath.Join(l.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return &ConfigError{Source: source, Reason: "cannot create exam file", Err: err}
	}
	if _, err := f.Write(raw); err != nil {
		f.Close()
		return &ConfigError{Source: source, Reason: "cannot write exam file", Err: err}
	}
	return f.Close()
}

// List enumerates the exam sources available in the loader's directory,
// sorted by name. Files that fail to parse are skipped.
func (l *Loader) List() ([]model.ExamSource, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read exam dir: %w", err)
	}

	sources := make([]model.ExamSource, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		exam, err := l.Load(name)
		if err != nil {
			continue
		}
		sources = append(sources, model.ExamSource{Name: name, Title: exam.Title})
	}

	sort.Slice(sources, func(i, j int) bool { return sources[i].Name < sources[j].Name })
	return sources, nil
}

func validate(exam *model.Exam) error {
	if len(exam.Questions) == 0 {
		return fmt.Errorf("empty question list")
	}
	for i, q := range exam.Questions {
		if len(q.Options) < 2 {
			return fmt.Errorf("question %d has %d options, need at least 2", i, len(q.Options))
		}
		if q.Correct < 0 || q.Correct >= len(q.Options) {
			return fmt.Errorf("question %d correct index %d out of range [0,%d)", i, q.Correct, len(q.Options))
		}
	}
	return nil
}
