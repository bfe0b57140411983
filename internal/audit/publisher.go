package audit

import (
	"context"
	"time"
)

// Publisher captures structured audit events. Synchronous publishers append to
// the storage layer directly; async publishers hand events to a Worker through
// a bounded inbox so the request path never blocks on audit persistence.
type Publisher struct {
	store Store
	inbox chan<- Event
}

// NewPublisher appends events to the store synchronously.
func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

// NewAsyncPublisher sends events to a Worker's inbox. Events are dropped when
// the inbox is full; audit is best-effort observability, not a ledger.
func NewAsyncPublisher(store Store, inbox chan<- Event) *Publisher {
	return &Publisher{store: store, inbox: inbox}
}

func (p *Publisher) Emit(ctx context.Context, base Event) error {
	if base.Timestamp.IsZero() {
		base.Timestamp = time.Now()
	}
	if p.inbox != nil {
		select {
		case p.inbox <- base:
		default:
		}
		return nil
	}
	return p.store.Append(ctx, base)
}

func (p *Publisher) List(ctx context.Context, walletAddress string) ([]Event, error) {
	return p.store.ListByWallet(ctx, walletAddress)
}
