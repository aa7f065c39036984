// Package cache is an optional read-through redis layer in front of the
// topic store. Authoring writes invalidate; a cold or unreachable redis only
// costs the extra store read.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/html-hub/learninghub/internal/topic"
)

const (
	keyTopicPrefix = "topic:"
	keyListPrefix  = "topics:list:"
)

type Cache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func New(addr string, ttl time.Duration, log *zap.Logger) *Cache {
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &Cache{client: client, ttl: ttl, log: log}
}

// CachedStore decorates a topic.Store with the cache. It satisfies
// topic.Store, so callers wire it in place of the SQL store.
type CachedStore struct {
	inner topic.Store
	cache *Cache
}

func NewCachedStore(inner topic.Store, c *Cache) *CachedStore {
	return &CachedStore{inner: inner, cache: c}
}

func (s *CachedStore) PutTopic(ctx context.Context, t topic.Topic) (topic.Topic, error) {
	saved, err := s.inner.PutTopic(ctx, t)
	if err != nil {
		return topic.Topic{}, err
	}
	s.cache.invalidate(ctx, saved.ID)
	return saved, nil
}

func (s *CachedStore) GetTopic(ctx context.Context, id string) (topic.Topic, error) {
	if t, ok := s.cache.getTopic(ctx, id); ok {
		return t, nil
	}
	t, err := s.inner.GetTopic(ctx, id)
	if err != nil {
		return topic.Topic{}, err
	}
	s.cache.setTopic(ctx, t)
	return t, nil
}

func (s *CachedStore) ListTopics(ctx context.Context, order topic.Order) ([]topic.Topic, error) {
	if ts, ok := s.cache.getList(ctx, order); ok {
		return ts, nil
	}
	ts, err := s.inner.ListTopics(ctx, order)
	if err != nil {
		return nil, err
	}
	s.cache.setList(ctx, order, ts)
	return ts, nil
}

func (s *CachedStore) DeleteTopic(ctx context.Context, id string) error {
	if err := s.inner.DeleteTopic(ctx, id); err != nil {
		return err
	}
	s.cache.invalidate(ctx, id)
	return nil
}

func (c *Cache) getTopic(ctx context.Context, id string) (topic.Topic, bool) {
	data, err := c.client.Get(ctx, keyTopicPrefix+id).Bytes()
	if err != nil {
		c.miss(err)
		return topic.Topic{}, false
	}
	var t topic.Topic
	if err := json.Unmarshal(data, &t); err != nil {
		return topic.Topic{}, false
	}
	return t, true
}

func (c *Cache) setTopic(ctx context.Context, t topic.Topic) {
	data, err := json.Marshal(t)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, keyTopicPrefix+t.ID, data, c.ttl).Err(); err != nil {
		c.log.Warn("cache set failed", zap.String("topic", t.ID), zap.Error(err))
	}
}

func (c *Cache) getList(ctx context.Context, order topic.Order) ([]topic.Topic, bool) {
	data, err := c.client.Get(ctx, keyListPrefix+string(order)).Bytes()
	if err != nil {
		c.miss(err)
		return nil, false
	}
	var ts []topic.Topic
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, false
	}
	return ts, true
}

func (c *Cache) setList(ctx context.Context, order topic.Order, ts []topic.Topic) {
	data, err := json.Marshal(ts)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, keyListPrefix+string(order), data, c.ttl).Err(); err != nil {
		c.log.Warn("cache set failed", zap.String("key", keyListPrefix+string(order)), zap.Error(err))
	}
}

func (c *Cache) invalidate(ctx context.Context, topicID string) {
	keys := []string{
		keyTopicPrefix + topicID,
		keyListPrefix + string(topic.OrderNewestFirst),
		keyListPrefix + string(topic.OrderOldestFirst),
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("cache invalidate failed", zap.String("topic", topicID), zap.Error(err))
	}
}

func (c *Cache) miss(err error) {
	if err != redis.Nil {
		c.log.Warn("cache read failed", zap.Error(err))
	}
}
