// Package provider abstracts the identity verification vendor. The core
// consumes exactly this interface; vendor step vocabularies and rejection
// enums must be reduced to SessionState before they cross it.
package provider

import (
	"context"
	"net/http"
)

// Status is the three-variant outcome of a verification session.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// SessionState is the reduced state of a verification attempt.
//
// FailedOnlyDueToDuplicate means every verification step passed except the
// duplicate-identity check: the person is verified, they just verified before.
// InitiallySuccessfulSessionID is the session of that earlier verification and
// is only meaningful when FailedOnlyDueToDuplicate is set.
type SessionState struct {
	Status                       Status
	Reasons                      []string
	FailedOnlyDueToDuplicate     bool
	InitiallySuccessfulSessionID string
}

// Provider is the capability set the core depends on.
type Provider interface {
	// IsWebhookAuthenticated reports whether the webhook request carries the
	// vendor's authentication material.
	IsWebhookAuthenticated(r *http.Request) bool

	// SessionIDFromWebhook extracts the session id the webhook is about.
	// Returns a coded bad-request error for malformed payloads.
	SessionIDFromWebhook(r *http.Request) (string, error)

	// SessionState polls the vendor for the live state of a session.
	SessionState(ctx context.Context, sessionID string) (SessionState, error)
}
