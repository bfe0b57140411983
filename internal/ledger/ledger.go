// Package ledger abstracts the on-chain checkmark contract. The core treats
// the ledger as ground truth for "has this identity consumed its one
// checkmark"; the session key space is advisory bookkeeping on top.
package ledger

import "context"

// Ledger is the query/execute contract of the checkmark contract. Checkmark
// ids are hashes of session ids; the ledger never sees a raw session id.
type Ledger interface {
	// Checkmark returns the checkmark id assigned to the address, if any.
	Checkmark(ctx context.Context, address string) (string, bool, error)

	// Address returns the address a checkmark id is assigned to, if any.
	Address(ctx context.Context, checkmarkID string) (string, bool, error)

	// Banned reports whether the checkmark id is banned from assignment.
	Banned(ctx context.Context, checkmarkID string) (bool, error)

	// Assign grants the checkmark id to the address. The contract enforces at
	// most one address per checkmark and one checkmark per address.
	Assign(ctx context.Context, checkmarkID, address string) error

	// Revoke deletes the checkmark. Admin operation.
	Revoke(ctx context.Context, checkmarkID string) error

	// SetBan updates whether a checkmark id is banned. Admin operation.
	SetBan(ctx context.Context, checkmarkID string, banned bool) error
}
