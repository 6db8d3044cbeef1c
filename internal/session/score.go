package session

import "github.com/eduos-project/proctor-backend/internal/model"

// Score counts the questions whose selected option matches the exam key.
// Unanswered entries never match. Pure: the result is always in
// [0, len(exam.Questions)].
func Score(exam *model.Exam, answers *AnswerStore) int {
	score := 0
	for i, q := range exam.Questions {
		if sel := answers.Get(i); sel != model.Unanswered && sel == q.Correct {
			score++
		}
	}
	return score
}
