package worker

import (
	"context"
	"errors"
	"time"

	"flashq/internal/flash"
	"flashq/internal/model"
	"flashq/internal/session"
	"flashq/internal/store"

	"go.uber.org/zap"
)

// Backend is what the worker needs: a queue to read from and the session
// store to deliver into.
type Backend interface {
	store.Store
	store.Queue
}

// Worker appends queued deliveries to the pending flash messages of their
// target session.
type Worker struct {
	backend Backend
	logger  *zap.Logger
}

// NewWorker initializes the worker.
func NewWorker(backend Backend, logger *zap.Logger) *Worker {
	return &Worker{
		backend: backend,
		logger:  logger,
	}
}

// Start runs the worker loop
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Worker started. Waiting for deliveries...")

	for {
		d, err := w.backend.PopQueue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				w.logger.Info("Worker shutting down")
				return
			}
			if errors.Is(err, store.ErrQueueEmpty) {
				continue
			}
			w.logger.Error("Queue error", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		w.deliver(ctx, d)
	}
}

func (w *Worker) deliver(ctx context.Context, d *model.Delivery) {
	logger := w.logger.With(zap.String("delivery_id", d.ID.String()))

	if d.SessionID == "" {
		logger.Warn("Dropping delivery without session")
		return
	}

	h := session.NewHandle(ctx, w.backend, d.SessionID, logger)
	f, err := flash.New(h, flash.Options{Logger: logger})
	if err != nil {
		logger.Error("Delivery failed", zap.Error(err))
		return
	}

	m := f.Add(d.Content, d.Category, d.CSSOverride)
	f.SaveSession()

	logger.Info("Delivered",
		zap.String("session_id", d.SessionID),
		zap.Int64("message_id", m.ID),
		zap.Stringer("category", m.Category),
		zap.Int("pending", f.Count(model.Any)))
}
