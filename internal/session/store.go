package session

import "context"

// Store is the durable key-value mapping underneath the session key space.
// Implementations provide no multi-key transactions and may be eventually
// consistent; callers must order writes so partial application is recoverable.
//
// Error Contract:
// - Get returns sentinel.ErrNotFound (possibly wrapped) when the key is absent
// - Delete of an absent key is a no-op, not an error
// - Infrastructure failures are returned wrapped with context
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
