package checkmark

import (
	"context"
	"errors"

	"github.com/NoahSaso/checkmark/internal/audit"
	"github.com/NoahSaso/checkmark/internal/checkmark/metrics"
	"github.com/NoahSaso/checkmark/internal/provider"
	dErrors "github.com/NoahSaso/checkmark/pkg/domain-errors"
	"github.com/NoahSaso/checkmark/pkg/platform/sentinel"
)

// CreateSession validates a wallet's right to start a verification attempt and
// durably records it. Gates run in a fixed order; the first failing gate
// aborts with its error.
//
// The seen marker is written before the later gates on purpose: a session id
// is burned the instant creation is attempted, regardless of downstream
// failure, so a partially failed create can never be replayed.
func (s *Service) CreateSession(ctx context.Context, walletAddress, sessionID string) error {
	if sessionID == "" {
		metrics.IncCreateRejected("invalid_session_id")
		return dErrors.New(dErrors.CodeValidation, "invalid session ID")
	}

	// Gate: the session id must never have been consumed before.
	seen, err := s.sessions.SessionSeen(ctx, sessionID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "check seen session")
	}
	if seen {
		metrics.IncCreateRejected("already_used")
		return dErrors.New(dErrors.CodeConflict, "verification already used")
	}

	// Gate: the session must have been paid for.
	paid, err := s.payments.IsPaidFor(ctx, HashSessionID(sessionID))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "check payment")
	}
	if !paid {
		metrics.IncCreateRejected("unpaid")
		return dErrors.New(dErrors.CodePaymentRequired, "verification hasn't been paid for")
	}

	// Burn the session id before anything else mutates. Even if a later gate
	// fails and the pending session is never stored, the id stays consumed.
	if err := s.sessions.MarkSessionSeen(ctx, sessionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "mark session seen")
	}

	// Gate: one pending session per wallet. A prior attempt only blocks while
	// it can still succeed; a terminally failed one is cleared so the wallet
	// can retry with this new session id.
	existingSessionID, err := s.sessions.PendingSessionForWallet(ctx, walletAddress)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "check pending session")
	}
	if existingSessionID != "" {
		state, err := s.pollState(ctx, existingSessionID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "poll existing pending session")
		}
		if state.Status != provider.StatusFailed {
			metrics.IncCreateRejected("already_pending")
			return dErrors.New(dErrors.CodeConflict, "you are already waiting for verification")
		}
		if err := s.sessions.ClearPendingSession(ctx, existingSessionID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "clear failed pending session")
		}
		s.logger.InfoContext(ctx, "cleared terminally failed pending session",
			"wallet", walletAddress,
			"session_id", existingSessionID,
		)
	}

	// Gate: neither the wallet nor the session may already be checkmarked.
	hasCheckmark, err := s.walletHasCheckmark(ctx, walletAddress)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "query wallet checkmark")
	}
	if hasCheckmark {
		metrics.IncCreateRejected("already_checkmarked")
		return dErrors.New(dErrors.CodeConflict, "you already have a checkmark")
	}

	assigned, err := s.sessionHasCheckmark(ctx, sessionID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "query session checkmark")
	}
	if assigned {
		metrics.IncCreateRejected("already_assigned")
		return dErrors.New(dErrors.CodeConflict, "this verification is already assigned to a checkmark")
	}

	// Gate: the session must exist at the provider and still be pending.
	state, err := s.pollState(ctx, sessionID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "poll new session")
	}
	if state.Status != provider.StatusPending {
		metrics.IncCreateRejected("not_pending")
		return dErrors.New(dErrors.CodeValidation, "verification is not pending")
	}

	// Record the pending pair; a concurrent create for the same wallet or
	// session loses here.
	if err := s.sessions.StorePendingSession(ctx, walletAddress, sessionID); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			metrics.IncCreateRejected("store_conflict")
			return dErrors.Wrap(err, dErrors.CodeConflict, "pending session conflict")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "store pending session")
	}

	metrics.IncSessionsCreated()
	if err := s.audit.Emit(ctx, audit.Event{
		WalletAddress: walletAddress,
		SessionID:     sessionID,
		Action:        audit.ActionSessionCreated,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "error", err)
	}

	return nil
}
