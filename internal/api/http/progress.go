package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/html-hub/learninghub/internal/exam"
	"github.com/html-hub/learninghub/internal/progress"
	"github.com/html-hub/learninghub/internal/rbac"
	"github.com/html-hub/learninghub/internal/topic"
)

// POST /topics/{topicID}/complete
func MarkCompleteHandler(rec *progress.Reconciler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := rbac.SubjectFromContext(r.Context())
		record, err := rec.ApplyCompletion(r.Context(), userID, chi.URLParam(r, "topicID"))
		if err != nil {
			writeProgressError(w, err)
			return
		}
		_ = json.NewEncoder(w).Encode(record)
	}
}

// POST /topics/{topicID}/exam/start
//
// Freezes the topic's current question set into a single-use attempt, so an
// admin edit mid-attempt cannot change what the submission is graded against.
func StartExamHandler(topics topic.Store, attempts exam.AttemptStore) http.HandlerFunc {
	type out struct {
		AttemptID string               `json:"attempt_id"`
		ExpiresAt int64                `json:"expires_at"`
		Questions []topic.QuestionView `json:"questions"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		topicID := chi.URLParam(r, "topicID")
		t, err := topics.GetTopic(r.Context(), topicID)
		if err != nil {
			if errors.Is(err, topic.ErrNotFound) {
				http.Error(w, "topic not found", http.StatusNotFound)
				return
			}
			http.Error(w, "get topic", http.StatusInternalServerError)
			return
		}
		if len(t.Questions) == 0 {
			http.Error(w, exam.ErrNoQuestions.Error(), http.StatusBadRequest)
			return
		}

		att := exam.Attempt{
			ID:        uuid.NewString(),
			UserID:    rbac.SubjectFromContext(r.Context()),
			TopicID:   topicID,
			Questions: t.Questions,
			CreatedAt: time.Now().UTC(),
		}
		if err := attempts.Create(r.Context(), att); err != nil {
			http.Error(w, "start attempt", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(out{
			AttemptID: att.ID,
			ExpiresAt: att.CreatedAt.Add(exam.AttemptTTL).Unix(),
			Questions: t.StudentView().Questions,
		})
	}
}

// POST /topics/{topicID}/exam
// { "attempt_id": "...", "answers": { "<questionID>": <optionIndex> } }
//
// With an attempt_id the submission is graded against the question set frozen
// at exam start; without one it is graded against the topic's current set.
// Grading happens entirely before the store is touched; a rejected submission
// never leaves a partial write. The response reveals the correct answer
// indexes so the client can render the review state.
func SubmitExamHandler(topics topic.Store, attempts exam.AttemptStore, rec *progress.Reconciler) http.HandlerFunc {
	type out struct {
		Result         exam.Result     `json:"result"`
		Record         progress.Record `json:"record"`
		CorrectAnswers map[string]int  `json:"correct_answers"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AttemptID string         `json:"attempt_id"`
			Answers   map[string]int `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		topicID := chi.URLParam(r, "topicID")
		userID := rbac.SubjectFromContext(r.Context())

		questions, ok := examQuestions(w, r, topics, attempts, topicID, userID, req.AttemptID)
		if !ok {
			return
		}

		result, err := exam.Grade(questions, req.Answers)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		record, err := rec.ApplyExamResult(r.Context(), userID, topicID, result.ScorePercent)
		if err != nil {
			writeProgressError(w, err)
			return
		}

		correct := make(map[string]int, len(questions))
		for _, q := range questions {
			correct[q.ID] = q.CorrectAnswer
		}
		_ = json.NewEncoder(w).Encode(out{Result: result, Record: record, CorrectAnswers: correct})
	}
}

// examQuestions resolves the question set a submission is graded against and
// writes the error response itself when resolution fails.
func examQuestions(w http.ResponseWriter, r *http.Request, topics topic.Store, attempts exam.AttemptStore, topicID, userID, attemptID string) ([]topic.Question, bool) {
	if attemptID == "" {
		t, err := topics.GetTopic(r.Context(), topicID)
		if err != nil {
			if errors.Is(err, topic.ErrNotFound) {
				http.Error(w, "topic not found", http.StatusNotFound)
				return nil, false
			}
			http.Error(w, "get topic", http.StatusInternalServerError)
			return nil, false
		}
		return t.Questions, true
	}

	att, err := attempts.Take(r.Context(), attemptID)
	switch {
	case errors.Is(err, exam.ErrAttemptNotFound):
		http.Error(w, "attempt not found", http.StatusNotFound)
		return nil, false
	case errors.Is(err, exam.ErrAttemptExpired):
		http.Error(w, "attempt expired, start a new exam", http.StatusGone)
		return nil, false
	case err != nil:
		http.Error(w, "load attempt", http.StatusInternalServerError)
		return nil, false
	}
	if att.UserID != userID || att.TopicID != topicID {
		http.Error(w, "attempt not found", http.StatusNotFound)
		return nil, false
	}
	return att.Questions, true
}

// GET /progress
func ListProgressHandler(store progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := rbac.SubjectFromContext(r.Context())
		records, err := store.ListByUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "list progress", http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []progress.Record{}
		}
		_ = json.NewEncoder(w).Encode(records)
	}
}

// GET /progress/summary
func SummaryHandler(topics topic.Store, store progress.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := rbac.SubjectFromContext(r.Context())
		ts, err := topics.ListTopics(r.Context(), topic.OrderNewestFirst)
		if err != nil {
			http.Error(w, "list topics", http.StatusInternalServerError)
			return
		}
		records, err := store.ListByUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "list progress", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(progress.Summarize(ts, records))
	}
}

// A failed store write is transient and safe to retry: the reconciler's
// writes are full-record upserts, so repeating the request converges on the
// same final record.
func writeProgressError(w http.ResponseWriter, err error) {
	var pe *progress.PersistenceError
	if errors.As(err, &pe) {
		http.Error(w, "progress write failed, retry", http.StatusServiceUnavailable)
		return
	}
	http.Error(w, "progress update failed", http.StatusInternalServerError)
}
