package progress

import (
	"context"
	"sync"
)

// memoryStore deliberately implements only Insert/Update, not Upserter, so it
// exercises the reconciler's two-step path.
type memoryStore struct {
	mu      sync.RWMutex
	records map[string]Record // key: userID|topicID
}

func NewInMemoryStore() Store {
	return &memoryStore{records: map[string]Record{}}
}

func memKey(userID, topicID string) string { return userID + "|" + topicID }

func (m *memoryStore) Get(_ context.Context, userID, topicID string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[memKey(userID, topicID)]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (m *memoryStore) ListByUser(_ context.Context, userID string) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Record
	for _, rec := range m.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryStore) Insert(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey(rec.UserID, rec.TopicID)
	if _, ok := m.records[k]; ok {
		return ErrDuplicateKey
	}
	m.records[k] = rec
	return nil
}

func (m *memoryStore) Update(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey(rec.UserID, rec.TopicID)
	if _, ok := m.records[k]; !ok {
		return ErrNotFound
	}
	m.records[k] = rec
	return nil
}
