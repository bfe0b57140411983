// Package admin holds the operator surface: banning checkmark identities and
// revoking issued checkmarks. Both act on the ledger and leave audit events
// naming the operator.
package admin

import (
	"context"
	"errors"
	"log/slog"

	"github.com/NoahSaso/checkmark/internal/audit"
	"github.com/NoahSaso/checkmark/internal/ledger"
	dErrors "github.com/NoahSaso/checkmark/pkg/domain-errors"
	"github.com/NoahSaso/checkmark/pkg/platform/sentinel"
)

type Service struct {
	ledger ledger.Ledger
	audit  *audit.Publisher
	logger *slog.Logger
}

func New(ldgr ledger.Ledger, auditPub *audit.Publisher, logger *slog.Logger) *Service {
	return &Service{ledger: ldgr, audit: auditPub, logger: logger}
}

// SetBan flips the ban flag for a checkmark identity. Banning is keyed by the
// checkmark id of the identity's initial verification, so it holds across
// re-verification attempts.
func (s *Service) SetBan(ctx context.Context, actor, checkmarkID string, banned bool) error {
	if checkmarkID == "" {
		return dErrors.New(dErrors.CodeValidation, "missing checkmark ID")
	}

	if err := s.ledger.SetBan(ctx, checkmarkID, banned); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "update checkmark ban")
	}

	reason := "unbanned"
	if banned {
		reason = "banned"
	}
	if err := s.audit.Emit(ctx, audit.Event{
		CheckmarkID: checkmarkID,
		Action:      audit.ActionBanUpdated,
		Reason:      reason,
		Actor:       actor,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "error", err)
	}

	s.logger.InfoContext(ctx, "checkmark ban updated",
		"checkmark_id", checkmarkID,
		"banned", banned,
		"actor", actor,
	)
	return nil
}

// Revoke removes an issued checkmark from its wallet. The identity may
// re-verify afterwards unless also banned.
func (s *Service) Revoke(ctx context.Context, actor, checkmarkID string) error {
	if checkmarkID == "" {
		return dErrors.New(dErrors.CodeValidation, "missing checkmark ID")
	}

	if err := s.ledger.Revoke(ctx, checkmarkID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "checkmark not found")
		}
		return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "revoke checkmark")
	}

	if err := s.audit.Emit(ctx, audit.Event{
		CheckmarkID: checkmarkID,
		Action:      audit.ActionCheckmarkRevoked,
		Actor:       actor,
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "error", err)
	}

	s.logger.InfoContext(ctx, "checkmark revoked",
		"checkmark_id", checkmarkID,
		"actor", actor,
	)
	return nil
}
