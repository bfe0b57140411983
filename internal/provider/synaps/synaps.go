// Package synaps implements the verification provider interface against the
// Synaps individual onboarding API.
package synaps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/NoahSaso/checkmark/internal/provider"
	dErrors "github.com/NoahSaso/checkmark/pkg/domain-errors"
	strutil "github.com/NoahSaso/checkmark/pkg/platform/strings"
)

// ID is the registry key for this provider.
const ID = "synaps"

// Config carries the Synaps credentials and endpoint.
type Config struct {
	BaseURL       string
	ClientID      string
	APIKey        string
	WebhookSecret string
}

// Synaps talks to the Synaps onboarding API and reduces its step vocabulary
// to the core's three-variant session state.
type Synaps struct {
	cfg    Config
	client *http.Client
}

// New constructs a Synaps provider.
func New(cfg Config) *Synaps {
	return &Synaps{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

var _ provider.Provider = (*Synaps)(nil)

// IsWebhookAuthenticated checks the shared secret Synaps appends to the
// webhook URL as a query parameter.
func (s *Synaps) IsWebhookAuthenticated(r *http.Request) bool {
	secret := r.URL.Query().Get("secret")
	return secret != "" && secret == s.cfg.WebhookSecret
}

// SessionIDFromWebhook extracts the session id from the webhook body.
func (s *Synaps) SessionIDFromWebhook(r *http.Request) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeBadRequest, "read webhook body")
	}
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid webhook body")
	}
	if payload.SessionID == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "webhook body missing session_id")
	}
	return payload.SessionID, nil
}

// SessionState polls onboarding details and reduces them.
//
// A CANCELLED session only counts as failed once every step has reached a
// terminal state; until then it is still pending, because Synaps can cancel a
// session while individual checks are mid-flight and later revive them.
func (s *Synaps) SessionState(ctx context.Context, sessionID string) (provider.SessionState, error) {
	details, err := s.onboardingDetails(ctx, sessionID)
	if err != nil {
		return provider.SessionState{}, err
	}

	switch details.Session.Status {
	case sessionPending:
		return provider.SessionState{Status: provider.StatusPending}, nil

	case sessionVerified:
		return provider.SessionState{Status: provider.StatusSucceeded}, nil

	case sessionCancelled:
		if !allStepsTerminal(details.Steps) {
			return provider.SessionState{Status: provider.StatusPending}, nil
		}
		return reduceCancelled(details.Steps), nil

	default:
		return provider.SessionState{}, dErrors.Newf(dErrors.CodeUpstreamUnavailable,
			"unexpected synaps session status: %s", details.Session.Status)
	}
}

func allStepsTerminal(steps map[string]verificationStep) bool {
	for _, step := range steps {
		switch step.Type {
		case stepTypeLiveness:
			if !step.Verification.State.terminal() {
				return false
			}
		case stepTypeIdentity:
			v := step.Verification
			if v.Document != nil && !v.Document.State.terminal() {
				return false
			}
			if v.Duplicate != nil && !v.Duplicate.State.terminal() {
				return false
			}
			if v.Facematch != nil && !v.Facematch.State.terminal() {
				return false
			}
		}
	}
	return true
}

// reduceCancelled maps terminal step rejections to user-facing reasons and
// detects the duplicate-only failure that makes a session eligible for
// checkmark re-assignment.
func reduceCancelled(steps map[string]verificationStep) provider.SessionState {
	var reasons []string
	var initialSessionID string
	failedOnlyDueToDuplicate := len(steps) > 0

	for _, step := range steps {
		switch step.Type {
		case stepTypeLiveness:
			if step.Verification.State == stateRejected {
				reasons = append(reasons, "Failed to verify liveness.")
			}
			if step.Verification.State != stateValidated {
				failedOnlyDueToDuplicate = false
			}

		case stepTypeIdentity:
			v := step.Verification
			if v.Document != nil && v.Document.State == stateRejected {
				reasons = append(reasons, v.Document.Rejection.UserReason)
			}
			if v.Duplicate != nil && v.Duplicate.State == stateRejected {
				reasons = append(reasons, "Identity already verified.")
				initialSessionID = v.Duplicate.SessionID
			}
			if v.Facematch != nil && v.Facematch.State == stateRejected {
				reasons = append(reasons, "Face does not appear to match ID submitted.")
			}

			// Duplicate-only means: duplicate rejected, everything else validated.
			duplicateOnly := v.Duplicate != nil && v.Duplicate.State == stateRejected &&
				v.Document != nil && v.Document.State == stateValidated &&
				v.Facematch != nil && v.Facematch.State == stateValidated
			if !duplicateOnly {
				failedOnlyDueToDuplicate = false
			}

		default:
			failedOnlyDueToDuplicate = false
		}
	}

	// Identical rejections across steps and empty vendor reasons collapse.
	reasons = strutil.DedupeAndTrim(reasons)
	if len(reasons) == 0 {
		reasons = []string{"Unknown error."}
	}

	return provider.SessionState{
		Status:                       provider.StatusFailed,
		Reasons:                      reasons,
		FailedOnlyDueToDuplicate:     failedOnlyDueToDuplicate,
		InitiallySuccessfulSessionID: initialSessionID,
	}
}

func (s *Synaps) onboardingDetails(ctx context.Context, sessionID string) (*onboardingDetails, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"/v3/onboarding/details", nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "build synaps request")
	}
	req.Header.Set("Session-Id", sessionID)
	req.Header.Set("Client-Id", s.cfg.ClientID)
	req.Header.Set("Api-Key", s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "synaps request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, dErrors.Wrap(
			fmt.Errorf("synaps responded %d: %s", resp.StatusCode, body),
			dErrors.CodeUpstreamUnavailable, "synaps error")
	}

	var details onboardingDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "decode synaps response")
	}
	return &details, nil
}
