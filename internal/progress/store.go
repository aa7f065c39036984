package progress

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("progress record not found")
	// ErrDuplicateKey: a two-step insert raced with another writer for the
	// same (user, topic) pair. Recovered internally by retrying as an update.
	ErrDuplicateKey = errors.New("progress record already exists")
)

// PersistenceError reports a failed store write together with the record the
// operation meant to persist, so a retry does not have to re-derive it.
type PersistenceError struct {
	Record Record
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist progress %s/%s: %v", e.Record.UserID, e.Record.TopicID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

type Store interface {
	Get(ctx context.Context, userID, topicID string) (Record, error)
	ListByUser(ctx context.Context, userID string) ([]Record, error)
	Insert(ctx context.Context, rec Record) error
	Update(ctx context.Context, rec Record) error
}

// Upserter is implemented by stores with a native natural-key upsert. The
// reconciler prefers it over the two-step insert-or-update path.
type Upserter interface {
	Upsert(ctx context.Context, rec Record) error
}
