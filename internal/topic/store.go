package topic

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("topic not found")

type Order string

const (
	OrderNewestFirst Order = "desc"
	OrderOldestFirst Order = "asc"
)

type Store interface {
	PutTopic(ctx context.Context, t Topic) (Topic, error)
	GetTopic(ctx context.Context, id string) (Topic, error)
	ListTopics(ctx context.Context, order Order) ([]Topic, error)
	DeleteTopic(ctx context.Context, id string) error
}
