package progress

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Clock func() time.Time

// Reconciler applies progress changes with read-modify-write discipline
// against the (user, topic) natural key. Every write is the full final
// record, never an increment, so retried requests are idempotent.
type Reconciler struct {
	store Store
	now   Clock
}

func NewReconciler(store Store, now Clock) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{store: store, now: now}
}

// ApplyCompletion marks the topic completed. An existing exam score and its
// timestamp are carried over untouched; marking a topic complete must not
// erase a prior result.
func (r *Reconciler) ApplyCompletion(ctx context.Context, userID, topicID string) (Record, error) {
	return r.apply(ctx, userID, topicID, func(existing *Record) Record {
		if existing == nil {
			return Record{Completed: true}
		}
		rec := *existing
		rec.Completed = true
		return rec
	})
}

// ApplyExamResult records the latest attempt: completed, the new score and a
// fresh completion timestamp, overwriting any prior score. There is no
// attempt history.
func (r *Reconciler) ApplyExamResult(ctx context.Context, userID, topicID string, scorePercent int) (Record, error) {
	return r.apply(ctx, userID, topicID, func(existing *Record) Record {
		score := scorePercent
		at := r.now().UTC()
		return Record{Completed: true, Score: &score, CompletedAt: &at}
	})
}

// apply runs one reconciliation round: read the current record, merge, write.
// Stores with a native upsert get a single atomic write; otherwise the write
// is insert-or-update, and an insert that loses a race is re-merged against
// the row that appeared and retried as an update.
func (r *Reconciler) apply(ctx context.Context, userID, topicID string, merge func(existing *Record) Record) (Record, error) {
	existing, err := r.store.Get(ctx, userID, topicID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Record{}, fmt.Errorf("load progress %s/%s: %w", userID, topicID, err)
	}
	existed := err == nil

	rec := r.merged(userID, topicID, existed, existing, merge)

	if up, ok := r.store.(Upserter); ok {
		if err := up.Upsert(ctx, rec); err != nil {
			return Record{}, &PersistenceError{Record: rec, Err: err}
		}
		return rec, nil
	}

	if !existed {
		err := r.store.Insert(ctx, rec)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, ErrDuplicateKey) {
			return Record{}, &PersistenceError{Record: rec, Err: err}
		}
		// Lost the insert race: merge against the row that won and update.
		current, gerr := r.store.Get(ctx, userID, topicID)
		if gerr != nil {
			return Record{}, &PersistenceError{Record: rec, Err: gerr}
		}
		rec = r.merged(userID, topicID, true, current, merge)
	}

	if err := r.store.Update(ctx, rec); err != nil {
		return Record{}, &PersistenceError{Record: rec, Err: err}
	}
	return rec, nil
}

func (r *Reconciler) merged(userID, topicID string, existed bool, existing Record, merge func(existing *Record) Record) Record {
	var rec Record
	if existed {
		rec = merge(&existing)
	} else {
		rec = merge(nil)
	}
	rec.UserID = userID
	rec.TopicID = topicID
	rec.UpdatedAt = r.now().UTC()
	return rec
}
