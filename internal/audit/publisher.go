package audit

import (
	"context"
	"time"

	"gatepass/pkg/domain"
)

// Publisher captures structured audit events. Emission is decoupled from
// persistence through an inbox channel so domain services never block on the
// audit path.
type Publisher struct {
	store Store
	inbox chan Event
}

func NewPublisher(store Store, buffer int) *Publisher {
	if buffer <= 0 {
		buffer = 64
	}
	return &Publisher{store: store, inbox: make(chan Event, buffer)}
}

// Emit queues an event for the worker. A full inbox drops the event rather
// than stalling the submitting request; audit is best-effort here.
func (p *Publisher) Emit(ctx context.Context, e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	select {
	case p.inbox <- e:
	case <-ctx.Done():
	default:
	}
}

// Inbox exposes the consuming side for the worker.
func (p *Publisher) Inbox() <-chan Event { return p.inbox }

// List reads back the audit trail for one registration.
func (p *Publisher) List(ctx context.Context, id domain.RegistrationID) ([]Event, error) {
	return p.store.ListByRegistration(ctx, id)
}
