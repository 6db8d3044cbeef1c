package session

import (
	"testing"

	"github.com/eduos-project/proctor-backend/internal/model"
)

func TestScore(t *testing.T) {
	cases := []struct {
		name    string
		answers []int
		want    int
	}{
		{"all correct", []int{0, 1, 2}, 3},
		{"one wrong", []int{1, 1, 2}, 2},
		{"all wrong", []int{3, 0, 1}, 0},
		{"all unanswered", []int{model.Unanswered, model.Unanswered, model.Unanswered}, 0},
		{"mixed unanswered", []int{0, model.Unanswered, 2}, 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := NewAnswerStore(len(sampleExam.Questions))
			for i, a := range tc.answers {
				if a != model.Unanswered {
					store.Set(i, a)
				}
			}
			got := Score(&sampleExam, store)
			if got != tc.want {
				t.Errorf("Score = %d, want %d", got, tc.want)
			}
			if got < 0 || got > len(sampleExam.Questions) {
				t.Errorf("Score %d outside [0, %d]", got, len(sampleExam.Questions))
			}
		})
	}
}

func TestAnswerStoreStartsUnanswered(t *testing.T) {
	store := NewAnswerStore(3)
	if store.Len() != 3 {
		t.Fatalf("Len = %d, want 3", store.Len())
	}
	for i := 0; i < 3; i++ {
		if store.Get(i) != model.Unanswered {
			t.Errorf("Get(%d) = %d, want Unanswered", i, store.Get(i))
		}
	}
}

func TestAnswerStoreOverwrite(t *testing.T) {
	store := NewAnswerStore(3)
	store.Set(1, 2)
	store.Set(1, 0)
	if got := store.Get(1); got != 0 {
		t.Errorf("Get(1) = %d, want 0 after overwrite", got)
	}
}

func TestAnswerStoreAllReturnsCopy(t *testing.T) {
	store := NewAnswerStore(2)
	store.Set(0, 1)

	all := store.All()
	all[0] = 99

	if store.Get(0) != 1 {
		t.Error("mutating All() result leaked into the store")
	}
}
