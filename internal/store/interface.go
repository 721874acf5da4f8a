package store

import (
	"context"
	"errors"

	"flashq/internal/model"
)

var (
	ErrNotFound   = errors.New("session value not found")
	ErrQueueEmpty = errors.New("delivery queue empty")
)

// Store keeps string values per session id.
type Store interface {
	Get(ctx context.Context, sessionID, key string) (string, error)
	Set(ctx context.Context, sessionID, key, value string) error
	Delete(ctx context.Context, sessionID, key string) error
	Exists(ctx context.Context, sessionID, key string) (bool, error)
}

// Queue carries deliveries to the worker. PopQueue may return ErrQueueEmpty
// when it gives up waiting; callers poll again.
type Queue interface {
	Push(ctx context.Context, d model.Delivery) error
	PopQueue(ctx context.Context) (*model.Delivery, error)
}
