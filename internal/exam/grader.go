// Package exam grades multiple-choice submissions. Grading is pure: it never
// touches a store, and every input problem is rejected before any caller
// could reach a write path.
package exam

import (
	"errors"

	"github.com/html-hub/learninghub/internal/topic"
)

// PassThreshold is the inclusive pass mark, in percent.
const PassThreshold = 70

var (
	// ErrIncompleteSubmission: at least one question has no selected answer.
	ErrIncompleteSubmission = errors.New("all questions must be answered before submitting")
	// ErrNoQuestions: the topic has no exam; submission should not be offered.
	ErrNoQuestions = errors.New("exam has no questions")
)

type Result struct {
	ScorePercent int  `json:"score_percent"`
	Passed       bool `json:"passed"`
}

// Grade scores answers (question id -> selected option index) against
// questions. The score is rounded half-up so boundary submissions land
// exactly on the threshold (7/10 -> 70, pass; 2/3 -> 67, fail).
func Grade(questions []topic.Question, answers map[string]int) (Result, error) {
	if len(questions) == 0 {
		return Result{}, ErrNoQuestions
	}
	for _, q := range questions {
		if _, ok := answers[q.ID]; !ok {
			return Result{}, ErrIncompleteSubmission
		}
	}

	correct := 0
	for _, q := range questions {
		if answers[q.ID] == q.CorrectAnswer {
			correct++
		}
	}
	total := len(questions)
	score := (correct*100*2 + total) / (total * 2)
	return Result{ScorePercent: score, Passed: score >= PassThreshold}, nil
}
