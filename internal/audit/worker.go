package audit

import (
	"context"
	"log/slog"
)

// Sink receives events after they are persisted. The broker publisher
// implements this; a nil sink means store-only operation.
type Sink interface {
	Publish(ctx context.Context, e Event) error
}

// Worker consumes audit events from the publisher inbox, persists them, and
// fans them out to the optional sink. It keeps background processing
// testable without wiring queue implementations in unit tests.
type Worker struct {
	store  Store
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(store Store, sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, sink: sink, inbox: inbox, logger: logger}
}

// Run processes events until ctx is cancelled. Persistence and sink failures
// are logged, not fatal: losing an audit record must never take the service
// down.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e := <-w.inbox:
			if err := w.store.Append(ctx, e); err != nil {
				w.logger.Error("audit append failed", "kind", e.Kind, "error", err)
			}
			if w.sink == nil {
				continue
			}
			if err := w.sink.Publish(ctx, e); err != nil {
				w.logger.Error("audit sink publish failed", "kind", e.Kind, "error", err)
			}
		}
	}
}
