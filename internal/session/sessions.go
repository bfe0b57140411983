package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/NoahSaso/checkmark/pkg/platform/sentinel"
)

// Sessions is the schema layer over the raw Store. It owns the four key
// namespaces and the pending-pair invariant: WALLET_FOR and PENDING_SESSION_FOR
// are kept as inverses of each other. The store has no multi-key transactions,
// so the pair is written one key at a time; a crash between the two writes is
// an accepted, bounded inconsistency and readers validate both directions
// independently before trusting them.
type Sessions struct {
	store Store
}

// New constructs the session schema over a Store.
func New(store Store) *Sessions {
	return &Sessions{store: store}
}

// StorePendingSession records the bidirectional wallet <-> pending session
// mapping. Fails with sentinel.ErrConflict if either direction already exists.
// Both directions are read before either is written: multiple tabs or a
// malicious caller reusing a session id are the expected triggers.
func (s *Sessions) StorePendingSession(ctx context.Context, walletAddress, sessionID string) error {
	existingSession, err := s.store.Get(ctx, PendingSessionForWalletKey(walletAddress))
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	if existingSession != "" {
		return fmt.Errorf("wallet %s already has a pending verification: %w", walletAddress, sentinel.ErrConflict)
	}

	existingWallet, err := s.store.Get(ctx, WalletForPendingSessionKey(sessionID))
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	if existingWallet != "" {
		return fmt.Errorf("pending verification already attached to a wallet: %w", sentinel.ErrConflict)
	}

	if err := s.store.Put(ctx, PendingSessionForWalletKey(walletAddress), sessionID); err != nil {
		return err
	}
	return s.store.Put(ctx, WalletForPendingSessionKey(sessionID), walletAddress)
}

// ClearPendingSession retires both directions of the pending mapping. Fails
// with sentinel.ErrNotFound if the session has no wallet attached.
func (s *Sessions) ClearPendingSession(ctx context.Context, sessionID string) error {
	walletAddress, err := s.store.Get(ctx, WalletForPendingSessionKey(sessionID))
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, PendingSessionForWalletKey(walletAddress)); err != nil {
		return err
	}
	return s.store.Delete(ctx, WalletForPendingSessionKey(sessionID))
}

// WalletForPendingSession resolves the wallet behind a pending session.
func (s *Sessions) WalletForPendingSession(ctx context.Context, sessionID string) (string, error) {
	return s.store.Get(ctx, WalletForPendingSessionKey(sessionID))
}

// PendingSessionForWallet resolves the pending session a wallet is waiting on.
func (s *Sessions) PendingSessionForWallet(ctx context.Context, walletAddress string) (string, error) {
	return s.store.Get(ctx, PendingSessionForWalletKey(walletAddress))
}

// MarkSessionSeen burns a session id. Write-once; the value is a marker.
func (s *Sessions) MarkSessionSeen(ctx context.Context, sessionID string) error {
	return s.store.Put(ctx, SeenSessionKey(sessionID), "1")
}

// SessionSeen reports whether a session id has ever been consumed.
func (s *Sessions) SessionSeen(ctx context.Context, sessionID string) (bool, error) {
	_, err := s.store.Get(ctx, SeenSessionKey(sessionID))
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CurrentSessionForInitialSession resolves the session currently backing the
// identity's checkmark.
func (s *Sessions) CurrentSessionForInitialSession(ctx context.Context, initialSessionID string) (string, error) {
	return s.store.Get(ctx, CurrentSessionForInitialSessionKey(initialSessionID))
}

// SetCurrentSessionForInitialSession advances the current-session pointer.
// Idempotent: rewriting the same value is a no-op.
func (s *Sessions) SetCurrentSessionForInitialSession(ctx context.Context, initialSessionID, currentSessionID string) error {
	return s.store.Put(ctx, CurrentSessionForInitialSessionKey(initialSessionID), currentSessionID)
}
