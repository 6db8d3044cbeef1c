package model

// Question is a single multiple-choice question. Immutable once loaded.
type Question struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
	// Correct is the zero-based index of the correct option. Never sent to
	// candidates; see QuestionView.
	Correct int `json:"correct"`
}

// Exam is an immutable test definition: a title and an ordered question list.
// Owned exclusively by the active session once loaded.
type Exam struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// QuestionView is a question as shown to the candidate, with the correct
// option stripped.
type QuestionView struct {
	Number  int      `json:"number"` // 1-based, for display
	Total   int      `json:"total"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

// ViewQuestion builds the candidate-facing view of question idx.
func (e *Exam) ViewQuestion(idx int) QuestionView {
	q := e.Questions[idx]
	return QuestionView{
		Number:  idx + 1,
		Total:   len(e.Questions),
		Text:    q.Text,
		Options: q.Options,
	}
}

// ExamSource describes one loadable exam definition, as listed in the
// selection screen.
type ExamSource struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}
