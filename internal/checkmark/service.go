// Package checkmark holds the core state machine: session creation gates, the
// assignment algorithm, and the status projection. Everything else in the
// repository is plumbing around this package.
//
// Consistency model: the KV session store is advisory bookkeeping with no
// multi-key transactions; the ledger is ground truth for who holds a
// checkmark. Correctness comes from ordering (burn the session id before any
// other side effect, validate everything before the single ledger execute)
// plus idempotent post-execute bookkeeping, not from locks.
package checkmark

import (
	"context"
	"log/slog"
	"time"

	"github.com/NoahSaso/checkmark/internal/audit"
	"github.com/NoahSaso/checkmark/internal/checkmark/metrics"
	"github.com/NoahSaso/checkmark/internal/ledger"
	"github.com/NoahSaso/checkmark/internal/payment"
	"github.com/NoahSaso/checkmark/internal/provider"
	"github.com/NoahSaso/checkmark/internal/session"
)

// Service wires the session key space, the verification provider, and the
// on-chain collaborators into the checkmark state machine.
type Service struct {
	sessions *session.Sessions
	ledger   ledger.Ledger
	payments payment.Gate
	provider provider.Provider
	audit    *audit.Publisher
	logger   *slog.Logger
}

// New constructs the checkmark service.
func New(
	sessions *session.Sessions,
	ldgr ledger.Ledger,
	payments payment.Gate,
	prov provider.Provider,
	auditPub *audit.Publisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		sessions: sessions,
		ledger:   ldgr,
		payments: payments,
		provider: prov,
		audit:    auditPub,
		logger:   logger,
	}
}

// pollState wraps provider polls with latency instrumentation.
func (s *Service) pollState(ctx context.Context, sessionID string) (provider.SessionState, error) {
	start := time.Now()
	defer metrics.ObserveProviderPoll(start)
	return s.provider.SessionState(ctx, sessionID)
}

// walletHasCheckmark reports whether the ledger holds a checkmark for the wallet.
func (s *Service) walletHasCheckmark(ctx context.Context, walletAddress string) (bool, error) {
	_, ok, err := s.ledger.Checkmark(ctx, walletAddress)
	return ok, err
}

// sessionHasCheckmark reports whether the session's hash is assigned on the ledger.
func (s *Service) sessionHasCheckmark(ctx context.Context, sessionID string) (bool, error) {
	_, ok, err := s.ledger.Address(ctx, HashSessionID(sessionID))
	return ok, err
}
