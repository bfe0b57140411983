package httptransport

import (
	"net/http"

	"github.com/NoahSaso/checkmark/internal/checkmark"
	"github.com/NoahSaso/checkmark/internal/transport/http/shared"
)

// handleWebhook processes a provider delivery. Status codes tell the sender
// whether to redeliver: 2xx and 4xx are final for this delivery, except 202
// which acknowledges receipt of a not-yet-terminal session the sender should
// report again once it settles.
func (h *handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.deps.Checkmark.HandleWebhook(r.Context(), r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	switch outcome {
	case checkmark.WebhookAssigned:
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "checkmarked"})
	case checkmark.WebhookStillPending:
		shared.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "pending"})
	case checkmark.WebhookUnexpectedState:
		shared.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "unknown"})
	case checkmark.WebhookFailedTerminal:
		shared.WriteJSON(w, http.StatusConflict, map[string]string{"status": "failed"})
	case checkmark.WebhookUnknownSession:
		shared.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
	default:
		shared.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
