package audit

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/html-hub/learninghub/internal/progress"
)

// Wrap decorates a progress store so every successful write appends an event
// to the log. Reads pass through untouched. A store with a native upsert
// keeps it through the wrapper.
func Wrap(inner progress.Store, repo *EventRepo, log *zap.Logger) progress.Store {
	s := &store{inner: inner, repo: repo, log: log}
	if up, ok := inner.(progress.Upserter); ok {
		return &upsertStore{store: s, up: up}
	}
	return s
}

type store struct {
	inner progress.Store
	repo  *EventRepo
	log   *zap.Logger
}

func (s *store) Get(ctx context.Context, userID, topicID string) (progress.Record, error) {
	return s.inner.Get(ctx, userID, topicID)
}

func (s *store) ListByUser(ctx context.Context, userID string) ([]progress.Record, error) {
	return s.inner.ListByUser(ctx, userID)
}

func (s *store) Insert(ctx context.Context, rec progress.Record) error {
	if err := s.inner.Insert(ctx, rec); err != nil {
		return err
	}
	s.record(ctx, "insert", rec)
	return nil
}

func (s *store) Update(ctx context.Context, rec progress.Record) error {
	if err := s.inner.Update(ctx, rec); err != nil {
		return err
	}
	s.record(ctx, "update", rec)
	return nil
}

// record never fails the write it follows; a lost audit row is logged and
// dropped.
func (s *store) record(ctx context.Context, kind string, rec progress.Record) {
	data, err := json.Marshal(rec)
	if err != nil {
		s.log.Warn("audit: marshal record", zap.Error(err))
		return
	}
	e := Event{UserID: rec.UserID, TopicID: rec.TopicID, Kind: kind, DataJSON: string(data)}
	if err := s.repo.Append(ctx, e); err != nil {
		s.log.Warn("audit: append event",
			zap.String("user_id", rec.UserID),
			zap.String("topic_id", rec.TopicID),
			zap.Error(err))
	}
}

type upsertStore struct {
	*store
	up progress.Upserter
}

func (s *upsertStore) Upsert(ctx context.Context, rec progress.Record) error {
	if err := s.up.Upsert(ctx, rec); err != nil {
		return err
	}
	s.record(ctx, "upsert", rec)
	return nil
}
