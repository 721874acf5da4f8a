// Package session binds a cookie-identified browser session to a
// store.Store and exposes it to the flash engine.
package session

import (
	"context"
	"errors"

	"flashq/internal/store"

	"go.uber.org/zap"
)

// Handle is one session as seen by one request. Store failures are logged
// and degrade to "absent" so page rendering never breaks.
type Handle struct {
	ctx    context.Context
	store  store.Store
	id     string
	logger *zap.Logger
}

// NewHandle binds sessionID on st for the lifetime of ctx.
func NewHandle(ctx context.Context, st store.Store, sessionID string, logger *zap.Logger) *Handle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handle{
		ctx:    ctx,
		store:  st,
		id:     sessionID,
		logger: logger.With(zap.String("session_id", sessionID)),
	}
}

// ID returns the session id.
func (h *Handle) ID() string { return h.id }

// Available reports whether the handle is bound to a session.
func (h *Handle) Available() bool {
	return h.store != nil && h.id != ""
}

func (h *Handle) Has(key string) bool {
	ok, err := h.store.Exists(h.ctx, h.id, key)
	if err != nil {
		h.logger.Error("Session lookup failed", zap.String("key", key), zap.Error(err))
		return false
	}
	return ok
}

func (h *Handle) Get(key string) (string, bool) {
	val, err := h.store.Get(h.ctx, h.id, key)
	if errors.Is(err, store.ErrNotFound) {
		return "", false
	}
	if err != nil {
		h.logger.Error("Session read failed", zap.String("key", key), zap.Error(err))
		return "", false
	}
	return val, true
}

func (h *Handle) Set(key, value string) {
	if err := h.store.Set(h.ctx, h.id, key, value); err != nil {
		h.logger.Error("Session write failed", zap.String("key", key), zap.Error(err))
	}
}

func (h *Handle) Remove(key string) {
	if err := h.store.Delete(h.ctx, h.id, key); err != nil {
		h.logger.Error("Session delete failed", zap.String("key", key), zap.Error(err))
	}
}
