package session

import "github.com/eduos-project/proctor-backend/internal/model"

// AnswerStore maps question index to the selected option index, with exactly
// one entry per question. Entries start Unanswered and are only ever
// overwritten, never removed. Single-writer: only the controller's event
// loop mutates it.
type AnswerStore struct {
	selected []int
}

// NewAnswerStore creates a store with n entries, all unanswered.
func NewAnswerStore(n int) *AnswerStore {
	selected := make([]int, n)
	for i := range selected {
		selected[i] = model.Unanswered
	}
	return &AnswerStore{selected: selected}
}

// Set records option as the answer for question idx.
func (s *AnswerStore) Set(idx, option int) {
	s.selected[idx] = option
}

// Get returns the selected option for question idx, or model.Unanswered.
func (s *AnswerStore) Get(idx int) int {
	return s.selected[idx]
}

// Len returns the number of entries.
func (s *AnswerStore) Len() int {
	return len(s.selected)
}

// All returns a copy of every entry in question order.
func (s *AnswerStore) All() []int {
	out := make([]int, len(s.selected))
	copy(out, s.selected)
	return out
}
