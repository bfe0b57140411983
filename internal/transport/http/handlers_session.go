package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/NoahSaso/checkmark/internal/auth"
	"github.com/NoahSaso/checkmark/internal/transport/http/shared"
	dErrors "github.com/NoahSaso/checkmark/pkg/domain-errors"
)

// handleCreateSession registers a paid, pending verification session for the
// authenticated wallet. The session id rides inside the signed data payload.
func (h *handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	walletAddress := auth.GetWalletAddress(r.Context())
	if walletAddress == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing wallet"))
		return
	}

	var payload struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.Unmarshal(auth.GetRequestData(r.Context()), &payload); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "malformed payload"))
		return
	}

	if err := h.deps.Checkmark.CreateSession(r.Context(), walletAddress, payload.SessionID); err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteSuccess(w)
}
