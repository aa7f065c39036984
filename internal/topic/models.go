package topic

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Question struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

type Topic struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	Example     string     `json:"example,omitempty"` // HTML source, may be empty
	Questions   []Question `json:"questions"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

// QuestionView is the exam-safe shape served to students: no answer index.
type QuestionView struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type View struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Content     string         `json:"content"`
	Example     string         `json:"example,omitempty"`
	Questions   []QuestionView `json:"questions"`
	CreatedAt   int64          `json:"created_at,omitempty"`
}

// StudentView strips correct-answer indexes before a topic leaves the admin
// surface, parity with serving an exam without its answer key.
func (t Topic) StudentView() View {
	qs := make([]QuestionView, len(t.Questions))
	for i, q := range t.Questions {
		qs[i] = QuestionView{ID: q.ID, Question: q.Question, Options: q.Options}
	}
	return View{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Content:     t.Content,
		Example:     t.Example,
		Questions:   qs,
		CreatedAt:   t.CreatedAt,
	}
}

// Normalize prepares an authored topic for saving: mints missing ids, drops
// questions with blank prompts (transient authoring state, never saved) and
// validates that every remaining answer index points into its options.
func (t *Topic) Normalize() error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("topic title required")
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	kept := make([]Question, 0, len(t.Questions))
	for _, q := range t.Questions {
		if strings.TrimSpace(q.Question) == "" {
			continue
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return fmt.Errorf("question %s: correct answer index %d out of range", q.ID, q.CorrectAnswer)
		}
		kept = append(kept, q)
	}
	t.Questions = kept
	return nil
}
