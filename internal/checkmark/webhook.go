package checkmark

import (
	"context"
	"errors"
	"net/http"

	"github.com/NoahSaso/checkmark/internal/checkmark/metrics"
	"github.com/NoahSaso/checkmark/internal/provider"
	dErrors "github.com/NoahSaso/checkmark/pkg/domain-errors"
	"github.com/NoahSaso/checkmark/pkg/platform/sentinel"
)

// WebhookOutcome classifies a webhook delivery so the transport layer can pick
// a status that tells the sender whether to redeliver.
type WebhookOutcome string

const (
	// WebhookAssigned: a checkmark was minted. Terminal success.
	WebhookAssigned WebhookOutcome = "assigned"
	// WebhookStillPending: the session has not reached a terminal state yet.
	// The sender should redeliver later.
	WebhookStillPending WebhookOutcome = "still_pending"
	// WebhookFailedTerminal: the session failed for real (non-duplicate)
	// reasons. No action taken; the pending entry stays so the wallet can see
	// its failure. Do not redeliver.
	WebhookFailedTerminal WebhookOutcome = "failed_terminal"
	// WebhookUnknownSession: we have no pending entry for this session.
	// Nothing to do, ever.
	WebhookUnknownSession WebhookOutcome = "unknown_session"
	// WebhookUnexpectedState: the provider reported a state we cannot act on.
	// Worth redelivering in case it settles.
	WebhookUnexpectedState WebhookOutcome = "unexpected_state"
)

// HandleWebhook processes one provider webhook delivery end to end:
// authentication, session extraction, live state fetch, and - on a terminal,
// checkmark-granting outcome - the assignment.
func (s *Service) HandleWebhook(ctx context.Context, r *http.Request) (WebhookOutcome, error) {
	if !s.provider.IsWebhookAuthenticated(r) {
		return "", dErrors.New(dErrors.CodeUnauthorized, "webhook not authenticated")
	}

	pendingSessionID, err := s.provider.SessionIDFromWebhook(r)
	if err != nil {
		return "", err
	}

	// Unknown sessions are terminal: either the assignment already retired
	// the pair, or the webhook is about a session we never created.
	if _, err := s.sessions.WalletForPendingSession(ctx, pendingSessionID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			metrics.IncWebhookOutcome(string(WebhookUnknownSession))
			return WebhookUnknownSession, nil
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "look up pending session")
	}

	state, err := s.pollState(ctx, pendingSessionID)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "poll session state")
	}

	switch state.Status {
	case provider.StatusPending:
		metrics.IncWebhookOutcome(string(WebhookStillPending))
		return WebhookStillPending, nil

	case provider.StatusFailed:
		if !state.FailedOnlyDueToDuplicate {
			// Leave the pending entry alive so the status projection can show
			// the failure; retry is a fresh create with a new session id.
			metrics.IncWebhookOutcome(string(WebhookFailedTerminal))
			return WebhookFailedTerminal, nil
		}

		// The person verified before: every step passed except the duplicate
		// match. If their earlier checkmark was deleted, they may move it to
		// the wallet behind this new session.
		if state.InitiallySuccessfulSessionID == "" {
			return "", dErrors.New(dErrors.CodeValidation, "no initially verified session ID found")
		}
		if err := s.AttemptToAssign(ctx, state.InitiallySuccessfulSessionID, pendingSessionID); err != nil {
			return "", err
		}
		metrics.IncWebhookOutcome(string(WebhookAssigned))
		return WebhookAssigned, nil

	case provider.StatusSucceeded:
		// First-time success. The uniqueness check means no other session for
		// this identity can ever have succeeded, so a pre-existing current
		// session pointer signals a duplicate delivery racing us or a broken
		// uniqueness guarantee.
		if _, err := s.sessions.CurrentSessionForInitialSession(ctx, pendingSessionID); err == nil {
			return "", dErrors.New(dErrors.CodeConflict, "current session already exists for this session")
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "check current session")
		}

		if err := s.AttemptToAssign(ctx, pendingSessionID, pendingSessionID); err != nil {
			return "", err
		}
		metrics.IncWebhookOutcome(string(WebhookAssigned))
		return WebhookAssigned, nil

	default:
		metrics.IncWebhookOutcome(string(WebhookUnexpectedState))
		return WebhookUnexpectedState, nil
	}
}
