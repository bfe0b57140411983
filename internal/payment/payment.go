// Package payment answers whether a verification session has been paid for.
// Payments land on a cw-receipt contract keyed by the hashed session id; this
// package only queries, it never moves funds.
package payment

import "context"

// Gate is the paid/unpaid query the session creation flow depends on.
type Gate interface {
	// IsPaidFor reports whether the expected fee has been received for the
	// given hashed session id.
	IsPaidFor(ctx context.Context, hashedSessionID string) (bool, error)
}
