package audit

import "time"

// Action names for checkmark decisions.
const (
	ActionSessionCreated     = "session_created"
	ActionCheckmarkAssigned  = "checkmark_assigned"
	ActionAssignmentRejected = "assignment_rejected"
	ActionCheckmarkRevoked   = "checkmark_revoked"
	ActionBanUpdated         = "ban_updated"
)

// Event is emitted from domain logic to capture key checkmark decisions. Keep
// it transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp     time.Time
	WalletAddress string
	SessionID     string
	CheckmarkID   string
	Action        string
	Reason        string
	Actor         string
}
