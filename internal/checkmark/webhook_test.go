package checkmark

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NoahSaso/checkmark/internal/provider"
	dErrors "github.com/NoahSaso/checkmark/pkg/domain-errors"
)

func deliverWebhook(t *testing.T, f *fixture, sessionID string) (WebhookOutcome, error) {
	t.Helper()
	f.provider.webhookID = sessionID
	req := httptest.NewRequest("POST", "/webhook", nil)
	return f.svc.HandleWebhook(context.Background(), req)
}

func TestHandleWebhook_Unauthenticated(t *testing.T) {
	f := newFixture(t)
	f.provider.authenticated = false

	_, err := deliverWebhook(t, f, "s1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestHandleWebhook_UnknownSession(t *testing.T) {
	f := newFixture(t)

	outcome, err := deliverWebhook(t, f, "never-created")
	require.NoError(t, err)
	assert.Equal(t, WebhookUnknownSession, outcome)
}

func TestHandleWebhook_StillPending(t *testing.T) {
	f := newFixture(t)
	storePending(t, f, "wallet1", "s1")
	f.pendingState("s1")

	outcome, err := deliverWebhook(t, f, "s1")
	require.NoError(t, err)
	assert.Equal(t, WebhookStillPending, outcome)
}

func TestHandleWebhook_FailedTerminal(t *testing.T) {
	f := newFixture(t)
	storePending(t, f, "wallet1", "s1")
	f.provider.setState("s1", provider.SessionState{
		Status:  provider.StatusFailed,
		Reasons: []string{"Document rejected."},
	})

	outcome, err := deliverWebhook(t, f, "s1")
	require.NoError(t, err)
	assert.Equal(t, WebhookFailedTerminal, outcome)

	// The pending pair stays so the status projection can surface the failure.
	wallet, err := f.sessions.WalletForPendingSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "wallet1", wallet)
}

func TestHandleWebhook_FirstTimeSuccess(t *testing.T) {
	f := newFixture(t)
	storePending(t, f, "wallet1", "s1")
	f.provider.setState("s1", provider.SessionState{Status: provider.StatusSucceeded})

	outcome, err := deliverWebhook(t, f, "s1")
	require.NoError(t, err)
	assert.Equal(t, WebhookAssigned, outcome)

	addr, ok, err := f.ledger.Address(context.Background(), HashSessionID("s1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "wallet1", addr)
}

func TestHandleWebhook_RedeliveryAfterSuccess(t *testing.T) {
	f := newFixture(t)
	storePending(t, f, "wallet1", "s1")
	f.provider.setState("s1", provider.SessionState{Status: provider.StatusSucceeded})

	outcome, err := deliverWebhook(t, f, "s1")
	require.NoError(t, err)
	require.Equal(t, WebhookAssigned, outcome)
	callsAfterFirst := f.ledger.AssignCalls()

	// The assignment retired the pending pair, so a redelivery resolves to an
	// unknown session and never touches the ledger.
	outcome, err = deliverWebhook(t, f, "s1")
	require.NoError(t, err)
	assert.Equal(t, WebhookUnknownSession, outcome)
	assert.Equal(t, callsAfterFirst, f.ledger.AssignCalls())
}

func TestHandleWebhook_DuplicateReassignment(t *testing.T) {
	f := newFixture(t)

	// wallet1 verified via s1; the checkmark was later revoked.
	storePending(t, f, "wallet1", "s1")
	require.NoError(t, f.svc.AttemptToAssign(context.Background(), "s1", "s1"))
	require.NoError(t, f.ledger.Revoke(context.Background(), HashSessionID("s1")))

	// The same person retries via s2 for wallet2 and fails only the
	// duplicate check.
	storePending(t, f, "wallet2", "s2")
	f.provider.setState("s2", provider.SessionState{
		Status:                       provider.StatusFailed,
		FailedOnlyDueToDuplicate:     true,
		InitiallySuccessfulSessionID: "s1",
	})

	outcome, err := deliverWebhook(t, f, "s2")
	require.NoError(t, err)
	assert.Equal(t, WebhookAssigned, outcome)

	addr, ok, err := f.ledger.Address(context.Background(), HashSessionID("s2"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "wallet2", addr)

	current, err := f.sessions.CurrentSessionForInitialSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s2", current)
}

func TestHandleWebhook_DuplicateWithoutInitialSession(t *testing.T) {
	f := newFixture(t)
	storePending(t, f, "wallet1", "s1")
	f.provider.setState("s1", provider.SessionState{
		Status:                   provider.StatusFailed,
		FailedOnlyDueToDuplicate: true,
	})

	_, err := deliverWebhook(t, f, "s1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestHandleWebhook_DuplicateButBanned(t *testing.T) {
	f := newFixture(t)
	storePending(t, f, "wallet1", "s1")
	require.NoError(t, f.svc.AttemptToAssign(context.Background(), "s1", "s1"))
	require.NoError(t, f.ledger.Revoke(context.Background(), HashSessionID("s1")))
	require.NoError(t, f.ledger.SetBan(context.Background(), HashSessionID("s1"), true))
	callsBefore := f.ledger.AssignCalls()

	storePending(t, f, "wallet2", "s2")
	f.provider.setState("s2", provider.SessionState{
		Status:                       provider.StatusFailed,
		FailedOnlyDueToDuplicate:     true,
		InitiallySuccessfulSessionID: "s1",
	})

	_, err := deliverWebhook(t, f, "s2")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBanned))
	assert.Equal(t, callsBefore, f.ledger.AssignCalls())
}

func TestHandleWebhook_SucceededWithExistingPointer(t *testing.T) {
	f := newFixture(t)
	storePending(t, f, "wallet1", "s1")
	require.NoError(t, f.sessions.SetCurrentSessionForInitialSession(context.Background(), "s1", "s1"))
	f.provider.setState("s1", provider.SessionState{Status: provider.StatusSucceeded})

	_, err := deliverWebhook(t, f, "s1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}
