package checkmark

import (
	"context"
	"errors"

	"github.com/NoahSaso/checkmark/internal/audit"
	"github.com/NoahSaso/checkmark/internal/checkmark/metrics"
	dErrors "github.com/NoahSaso/checkmark/pkg/domain-errors"
	"github.com/NoahSaso/checkmark/pkg/platform/sentinel"
)

// AttemptToAssign turns a terminal verification outcome into a checkmark
// assignment for the pending session, anchored on the identity's initial
// successful session.
//
// Two call sites: a first-time success passes initialSessionID ==
// pendingSessionID; a duplicate-driven re-assignment passes the identity's
// original success as initialSessionID and the new attempt as
// pendingSessionID.
//
// Steps 1-5 are pure validation: any failure there leaves the ledger
// untouched. The ledger execute is the single mutating call; the pointer
// advance and pending-pair cleanup run only after it confirms, and both are
// idempotent so a retried webhook can safely redo them.
func (s *Service) AttemptToAssign(ctx context.Context, initialSessionID, pendingSessionID string) error {
	// Resolve the session whose checkmark currently or most recently backed
	// this identity. On a first-time success that is the pending session
	// itself; otherwise the pointer recorded at the last assignment.
	currentSessionID := pendingSessionID
	if initialSessionID != pendingSessionID {
		var err error
		currentSessionID, err = s.sessions.CurrentSessionForInitialSession(ctx, initialSessionID)
		if errors.Is(err, sentinel.ErrNotFound) {
			// A successful identity must always have a recorded current
			// session; its absence means the key space lost state.
			metrics.IncAssignRejected("no_current_session")
			return dErrors.New(dErrors.CodeInvariantViolation, "no current session found")
		}
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "resolve current session")
		}
	}

	// Bans are keyed by the initial session's hash so they survive
	// re-verification under new session ids.
	banned, err := s.ledger.Banned(ctx, HashSessionID(initialSessionID))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "query ban status")
	}
	if banned {
		metrics.IncAssignRejected("banned")
		if err := s.audit.Emit(ctx, audit.Event{
			SessionID:   pendingSessionID,
			CheckmarkID: HashSessionID(initialSessionID),
			Action:      audit.ActionAssignmentRejected,
			Reason:      "banned",
		}); err != nil {
			s.logger.WarnContext(ctx, "failed to emit audit event", "error", err)
		}
		return dErrors.New(dErrors.CodeBanned, "checkmark banned for this identity")
	}

	// The identity's current session must not still hold a checkmark; if it
	// does, the one checkmark this identity is entitled to is already live.
	assigned, err := s.sessionHasCheckmark(ctx, currentSessionID)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "query current session checkmark")
	}
	if assigned {
		metrics.IncAssignRejected("already_assigned")
		return dErrors.New(dErrors.CodeConflict, "checkmark already assigned for this identity")
	}

	destinationWallet, err := s.sessions.WalletForPendingSession(ctx, pendingSessionID)
	if errors.Is(err, sentinel.ErrNotFound) {
		metrics.IncAssignRejected("no_wallet")
		return dErrors.New(dErrors.CodeInvariantViolation, "no wallet found for pending session")
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "resolve wallet for pending session")
	}

	hasCheckmark, err := s.walletHasCheckmark(ctx, destinationWallet)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "query wallet checkmark")
	}
	if hasCheckmark {
		metrics.IncAssignRejected("wallet_already_checkmarked")
		return dErrors.New(dErrors.CodeConflict, "wallet already has a checkmark assigned")
	}

	// The single mutating call. A failure here leaves everything untouched;
	// the webhook sender retries the whole delivery.
	checkmarkID := HashSessionID(pendingSessionID)
	if err := s.ledger.Assign(ctx, checkmarkID, destinationWallet); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "ledger assign")
	}

	// Advance the pointer so future bans and re-assignments resolve to the
	// newest grant. Rewriting the same value on a redelivered webhook is a
	// no-op.
	if err := s.sessions.SetCurrentSessionForInitialSession(ctx, initialSessionID, pendingSessionID); err != nil {
		s.logger.ErrorContext(ctx, "assignment succeeded but pointer advance failed; webhook retry will redo it",
			"initial_session_id", initialSessionID,
			"pending_session_id", pendingSessionID,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "advance current session pointer")
	}

	// Retire the pending pair. An already-absent pair (redelivery) is fine.
	if err := s.sessions.ClearPendingSession(ctx, pendingSessionID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "clear pending session")
	}

	metrics.IncAssignments()
	if err := s.audit.Emit(ctx, audit.Event{
		WalletAddress: destinationWallet,
		SessionID:     pendingSessionID,
		CheckmarkID:   checkmarkID,
		Action:        audit.ActionCheckmarkAssigned,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "error", err)
	}

	s.logger.InfoContext(ctx, "checkmark assigned",
		"wallet", destinationWallet,
		"session_id", pendingSessionID,
		"initial_session_id", initialSessionID,
	)
	return nil
}
