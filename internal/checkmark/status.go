package checkmark

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/NoahSaso/checkmark/internal/provider"
	dErrors "github.com/NoahSaso/checkmark/pkg/domain-errors"
	"github.com/NoahSaso/checkmark/pkg/platform/sentinel"
)

// StatusValue is the caller-facing verification status of a wallet.
type StatusValue string

const (
	// StatusNone: no checkmark and no pending session.
	StatusNone StatusValue = "none"
	// StatusCheckmarked: the wallet holds a checkmark.
	StatusCheckmarked StatusValue = "checkmarked"
	// StatusPending: a verification attempt is in flight.
	StatusPending StatusValue = "pending"
	// StatusFailed: the attempt terminally failed for non-duplicate reasons.
	StatusFailed StatusValue = "failed"
	// StatusProcessing: the provider reports success but the assignment has
	// not landed yet - the gap between ledger truth and KV truth, closed
	// asynchronously by the webhook.
	StatusProcessing StatusValue = "processing"
)

// Status is the full status projection payload.
type Status struct {
	Status StatusValue `json:"status"`
	Errors []string    `json:"errors,omitempty"`
}

// Status derives a wallet's verification status from ledger state, the session
// key space, and at most one live provider poll. Pure read; no mutation.
func (s *Service) Status(ctx context.Context, walletAddress string) (Status, error) {
	var (
		hasCheckmark     bool
		pendingSessionID string
	)

	// The ledger query and the KV read are independent; overlap them.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hasCheckmark, err = s.walletHasCheckmark(gctx, walletAddress)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "query wallet checkmark")
		}
		return nil
	})
	g.Go(func() error {
		id, err := s.sessions.PendingSessionForWallet(gctx, walletAddress)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "look up pending session")
		}
		pendingSessionID = id
		return nil
	})
	if err := g.Wait(); err != nil {
		return Status{}, err
	}

	if hasCheckmark {
		return Status{Status: StatusCheckmarked}, nil
	}
	if pendingSessionID == "" {
		return Status{Status: StatusNone}, nil
	}

	state, err := s.pollState(ctx, pendingSessionID)
	if err != nil {
		return Status{}, dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "poll session state")
	}

	switch state.Status {
	case provider.StatusPending:
		return Status{Status: StatusPending}, nil
	case provider.StatusFailed:
		reasons := state.Reasons
		if len(reasons) == 0 {
			reasons = []string{"Unknown error."}
		}
		return Status{Status: StatusFailed, Errors: reasons}, nil
	default:
		// Succeeded but not yet assigned: the webhook closes this gap.
		return Status{Status: StatusProcessing}, nil
	}
}
