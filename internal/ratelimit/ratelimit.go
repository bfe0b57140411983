// Package ratelimit protects the public endpoints. Wallet creation is gated
// by payment anyway; the limiter exists for the unauthenticated surface
// (nonce issuance, status reads) where the only cost to a caller is bandwidth.
package ratelimit

import (
	"context"
	"time"
)

// Result reports the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// Store counts requests per key within a window.
type Store interface {
	// Allow records a request against key and reports whether it fits under
	// limit within the window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}
