package checkmark

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"github.com/NoahSaso/checkmark/internal/audit"
	"github.com/NoahSaso/checkmark/internal/ledger"
	"github.com/NoahSaso/checkmark/internal/payment"
	"github.com/NoahSaso/checkmark/internal/provider"
	"github.com/NoahSaso/checkmark/internal/session"
)

// fakeProvider serves canned session states keyed by session id.
type fakeProvider struct {
	mu            sync.Mutex
	states        map[string]provider.SessionState
	errs          map[string]error
	authenticated bool
	webhookID     string
	webhookIDErr  error
	polls         int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		states:        make(map[string]provider.SessionState),
		errs:          make(map[string]error),
		authenticated: true,
	}
}

var _ provider.Provider = (*fakeProvider)(nil)

func (f *fakeProvider) IsWebhookAuthenticated(_ *http.Request) bool {
	return f.authenticated
}

func (f *fakeProvider) SessionIDFromWebhook(_ *http.Request) (string, error) {
	return f.webhookID, f.webhookIDErr
}

func (f *fakeProvider) SessionState(_ context.Context, sessionID string) (provider.SessionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polls++
	if err := f.errs[sessionID]; err != nil {
		return provider.SessionState{}, err
	}
	return f.states[sessionID], nil
}

func (f *fakeProvider) setState(sessionID string, state provider.SessionState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[sessionID] = state
}

func (f *fakeProvider) setErr(sessionID string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[sessionID] = err
}

func (f *fakeProvider) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

// fixture wires the service against in-memory collaborators.
type fixture struct {
	svc      *Service
	sessions *session.Sessions
	ledger   *ledger.Memory
	payments *payment.Memory
	provider *fakeProvider
	audit    *audit.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := session.NewMemory()
	sessions := session.New(store)
	ldgr := ledger.NewMemory()
	payments := payment.NewMemory()
	prov := newFakeProvider()
	auditStore := audit.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		svc:      New(sessions, ldgr, payments, prov, audit.NewPublisher(auditStore), logger),
		sessions: sessions,
		ledger:   ldgr,
		payments: payments,
		provider: prov,
		audit:    auditStore,
	}
}

// payFor marks the session id as paid.
func (f *fixture) payFor(sessionID string) {
	f.payments.MarkPaid(HashSessionID(sessionID))
}

// pendingState marks the session as pending at the provider.
func (f *fixture) pendingState(sessionID string) {
	f.provider.setState(sessionID, provider.SessionState{Status: provider.StatusPending})
}

// auditActions lists the actions of all recorded audit events in order.
func (f *fixture) auditActions() []string {
	var actions []string
	for _, event := range f.audit.All() {
		actions = append(actions, event.Action)
	}
	return actions
}
