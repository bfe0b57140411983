package checkmark

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NoahSaso/checkmark/internal/audit"
	dErrors "github.com/NoahSaso/checkmark/pkg/domain-errors"
)

// storePending writes the pending pair directly, skipping the create gates.
func storePending(t *testing.T, f *fixture, wallet, sessionID string) {
	t.Helper()
	require.NoError(t, f.sessions.StorePendingSession(context.Background(), wallet, sessionID))
}

func TestAttemptToAssign_FirstTimeSuccess(t *testing.T) {
	f := newFixture(t)
	storePending(t, f, "wallet1", "s1")

	require.NoError(t, f.svc.AttemptToAssign(context.Background(), "s1", "s1"))

	// The ledger holds the checkmark keyed by the session hash.
	addr, ok, err := f.ledger.Address(context.Background(), HashSessionID("s1"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "wallet1", addr)

	// The current-session pointer anchors on the initial session.
	current, err := f.sessions.CurrentSessionForInitialSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", current)

	// The pending pair is retired.
	_, err = f.sessions.WalletForPendingSession(context.Background(), "s1")
	assert.Error(t, err)
	_, err = f.sessions.PendingSessionForWallet(context.Background(), "wallet1")
	assert.Error(t, err)

	assert.Equal(t, []string{audit.ActionCheckmarkAssigned}, f.auditActions())
}

func TestAttemptToAssign_DuplicateReassignment(t *testing.T) {
	f := newFixture(t)

	// wallet1 verified via s1, then the checkmark was revoked.
	storePending(t, f, "wallet1", "s1")
	require.NoError(t, f.svc.AttemptToAssign(context.Background(), "s1", "s1"))
	require.NoError(t, f.ledger.Revoke(context.Background(), HashSessionID("s1")))

	// The same person verifies again via s2 for wallet2.
	storePending(t, f, "wallet2", "s2")
	require.NoError(t, f.svc.AttemptToAssign(context.Background(), "s1", "s2"))

	addr, ok, err := f.ledger.Address(context.Background(), HashSessionID("s2"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "wallet2", addr)

	// The pointer advances from s1 to s2.
	current, err := f.sessions.CurrentSessionForInitialSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s2", current)
}

func TestAttemptToAssign_Banned(t *testing.T) {
	f := newFixture(t)
	storePending(t, f, "wallet1", "s2")
	require.NoError(t, f.sessions.SetCurrentSessionForInitialSession(context.Background(), "s1", "s1"))
	require.NoError(t, f.ledger.SetBan(context.Background(), HashSessionID("s1"), true))

	err := f.svc.AttemptToAssign(context.Background(), "s1", "s2")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBanned))

	// No mutation reached the ledger.
	assert.Zero(t, f.ledger.AssignCalls())

	// The rejection is audited.
	events := f.audit.All()
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionAssignmentRejected, events[0].Action)
	assert.Equal(t, "banned", events[0].Reason)
}

func TestAttemptToAssign_NoCurrentSessionPointer(t *testing.T) {
	f := newFixture(t)
	storePending(t, f, "wallet1", "s2")

	err := f.svc.AttemptToAssign(context.Background(), "s1", "s2")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	assert.Zero(t, f.ledger.AssignCalls())
}

func TestAttemptToAssign_CurrentSessionStillAssigned(t *testing.T) {
	f := newFixture(t)
	storePending(t, f, "wallet1", "s1")
	require.NoError(t, f.svc.AttemptToAssign(context.Background(), "s1", "s1"))
	callsAfterFirst := f.ledger.AssignCalls()

	// The identity's checkmark is live, so a new attempt must bounce.
	storePending(t, f, "wallet2", "s2")
	err := f.svc.AttemptToAssign(context.Background(), "s1", "s2")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, callsAfterFirst, f.ledger.AssignCalls())
}

func TestAttemptToAssign_NoWalletForPendingSession(t *testing.T) {
	f := newFixture(t)

	err := f.svc.AttemptToAssign(context.Background(), "s1", "s1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	assert.Zero(t, f.ledger.AssignCalls())
}

func TestAttemptToAssign_WalletAlreadyCheckmarked(t *testing.T) {
	f := newFixture(t)
	storePending(t, f, "wallet1", "s1")
	require.NoError(t, f.ledger.Assign(context.Background(), HashSessionID("other"), "wallet1"))
	callsBefore := f.ledger.AssignCalls()

	err := f.svc.AttemptToAssign(context.Background(), "s1", "s1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, callsBefore, f.ledger.AssignCalls())
}

func TestAttemptToAssign_LedgerFailureLeavesStateIntact(t *testing.T) {
	f := newFixture(t)
	storePending(t, f, "wallet1", "s1")
	f.ledger.FailNextAssign(errors.New("chain unavailable"))

	err := f.svc.AttemptToAssign(context.Background(), "s1", "s1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUpstreamUnavailable))

	// The pending pair survives so the webhook retry can redo the whole flow.
	wallet, err := f.sessions.WalletForPendingSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "wallet1", wallet)

	// The pointer never advanced.
	_, err = f.sessions.CurrentSessionForInitialSession(context.Background(), "s1")
	assert.Error(t, err)
}

func TestAttemptToAssign_IdempotentCleanup(t *testing.T) {
	f := newFixture(t)
	storePending(t, f, "wallet1", "s1")
	require.NoError(t, f.svc.AttemptToAssign(context.Background(), "s1", "s1"))

	// A redelivered assignment bounces on the already-assigned check without
	// touching the ledger again.
	callsAfterFirst := f.ledger.AssignCalls()
	err := f.svc.AttemptToAssign(context.Background(), "s1", "s1")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, callsAfterFirst, f.ledger.AssignCalls())
}
