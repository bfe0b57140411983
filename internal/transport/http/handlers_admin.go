package httptransport

import (
	"encoding/json"
	"net/http"

	"github.com/NoahSaso/checkmark/internal/platform/middleware"
	"github.com/NoahSaso/checkmark/internal/transport/http/shared"
	dErrors "github.com/NoahSaso/checkmark/pkg/domain-errors"
)

func (h *handler) handleBan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CheckmarkID string `json:"checkmark_id"`
		Banned      bool   `json:"banned"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	actor := middleware.GetAdminSubject(r.Context())
	if err := h.deps.Admin.SetBan(r.Context(), actor, req.CheckmarkID, req.Banned); err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteSuccess(w)
}

func (h *handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CheckmarkID string `json:"checkmark_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	actor := middleware.GetAdminSubject(r.Context())
	if err := h.deps.Admin.Revoke(r.Context(), actor, req.CheckmarkID); err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteSuccess(w)
}
