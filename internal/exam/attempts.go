package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/html-hub/learninghub/internal/topic"
)

// AttemptTTL bounds how long a started exam stays gradable.
const AttemptTTL = 2 * time.Hour

var (
	ErrAttemptNotFound = errors.New("exam attempt not found")
	ErrAttemptExpired  = errors.New("exam attempt expired")
)

// Attempt freezes a topic's question set at exam start, so editing the topic
// mid-attempt cannot change what an in-flight submission is graded against.
type Attempt struct {
	ID        string
	UserID    string
	TopicID   string
	Questions []topic.Question
	CreatedAt time.Time
}

type AttemptStore interface {
	Create(ctx context.Context, att Attempt) error
	// Take claims an attempt and removes it; attempts are single-use.
	Take(ctx context.Context, id string) (Attempt, error)
}

type SQLAttemptStore struct{ db *sql.DB }

func NewSQLAttemptStore(db *sql.DB) *SQLAttemptStore { return &SQLAttemptStore{db: db} }

func (s *SQLAttemptStore) Create(ctx context.Context, att Attempt) error {
	qs, err := json.Marshal(att.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO exam_attempts (id, user_id, topic_id, questions_json, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		att.ID, att.UserID, att.TopicID, string(qs), att.CreatedAt.Unix())
	return err
}

func (s *SQLAttemptStore) Take(ctx context.Context, id string) (Attempt, error) {
	var (
		att       Attempt
		qsJSON    string
		createdAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, topic_id, questions_json, created_at
		 FROM exam_attempts WHERE id = $1`, id).
		Scan(&att.ID, &att.UserID, &att.TopicID, &qsJSON, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, ErrAttemptNotFound
	}
	if err != nil {
		return Attempt{}, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM exam_attempts WHERE id = $1`, id); err != nil {
		return Attempt{}, err
	}
	if err := json.Unmarshal([]byte(qsJSON), &att.Questions); err != nil {
		return Attempt{}, err
	}
	att.CreatedAt = time.Unix(createdAt, 0).UTC()
	if time.Since(att.CreatedAt) > AttemptTTL {
		return Attempt{}, ErrAttemptExpired
	}
	return att, nil
}

type memoryAttemptStore struct {
	mu       sync.Mutex
	attempts map[string]Attempt
}

func NewInMemoryAttemptStore() AttemptStore {
	return &memoryAttemptStore{attempts: make(map[string]Attempt)}
}

func (s *memoryAttemptStore) Create(_ context.Context, att Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[att.ID] = att
	return nil
}

func (s *memoryAttemptStore) Take(_ context.Context, id string) (Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	att, ok := s.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	delete(s.attempts, id)
	if time.Since(att.CreatedAt) > AttemptTTL {
		return Attempt{}, ErrAttemptExpired
	}
	return att, nil
}
