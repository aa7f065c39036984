package topic

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryStore struct {
	mu     sync.RWMutex
	topics map[string]Topic
}

// NewInMemoryStore is used by tests and by offline runs without a database.
func NewInMemoryStore() Store {
	return &memoryStore{topics: map[string]Topic{}}
}

func (m *memoryStore) PutTopic(_ context.Context, t Topic) (Topic, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.topics[t.ID]; ok {
		t.CreatedAt = prev.CreatedAt
	} else if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().Unix()
	}
	m.topics[t.ID] = t
	return t, nil
}

func (m *memoryStore) GetTopic(_ context.Context, id string) (Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.topics[id]
	if !ok {
		return Topic{}, ErrNotFound
	}
	return t, nil
}

func (m *memoryStore) ListTopics(_ context.Context, order Order) ([]Topic, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Topic, 0, len(m.topics))
	for _, t := range m.topics {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if order == OrderOldestFirst {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out, nil
}

func (m *memoryStore) DeleteTopic(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.topics[id]; !ok {
		return ErrNotFound
	}
	delete(m.topics, id)
	return nil
}
