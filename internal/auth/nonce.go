package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const noncePrefix = "NONCE:"

// NonceStore tracks the next expected nonce per public key. A nonce is
// consumed exactly once; Consume advances it so a captured signature cannot be
// replayed.
type NonceStore interface {
	// Current returns the nonce the next signed request must carry. Missing
	// keys start at zero.
	Current(ctx context.Context, publicKey string) (uint64, error)

	// Consume advances the nonce past the one just used.
	Consume(ctx context.Context, publicKey string) error
}

// RedisNonceStore is the production NonceStore. Entries carry a TTL so stale
// pubkeys age out; expiry resets the nonce to zero, which is safe because the
// signature check still binds each nonce to one use.
type RedisNonceStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisNonceStore constructs a Redis-backed nonce store.
func NewRedisNonceStore(client *redis.Client, ttl time.Duration) *RedisNonceStore {
	return &RedisNonceStore{client: client, ttl: ttl}
}

var _ NonceStore = (*RedisNonceStore)(nil)

func (s *RedisNonceStore) Current(ctx context.Context, publicKey string) (uint64, error) {
	value, err := s.client.Get(ctx, noncePrefix+publicKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get nonce: %w", err)
	}

	nonce, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse stored nonce %q: %w", value, err)
	}
	return nonce, nil
}

func (s *RedisNonceStore) Consume(ctx context.Context, publicKey string) error {
	key := noncePrefix + publicKey
	pipe := s.client.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis advance nonce: %w", err)
	}
	return nil
}

// MemoryNonceStore keeps nonces in memory for tests and local development.
type MemoryNonceStore struct {
	mu     sync.Mutex
	nonces map[string]uint64
}

// NewMemoryNonceStore constructs an empty in-memory nonce store.
func NewMemoryNonceStore() *MemoryNonceStore {
	return &MemoryNonceStore{nonces: make(map[string]uint64)}
}

var _ NonceStore = (*MemoryNonceStore)(nil)

func (s *MemoryNonceStore) Current(_ context.Context, publicKey string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nonces[publicKey], nil
}

func (s *MemoryNonceStore) Consume(_ context.Context, publicKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonces[publicKey]++
	return nil
}
