package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/NoahSaso/checkmark/internal/auth"
	"github.com/NoahSaso/checkmark/internal/transport/http/shared"
	dErrors "github.com/NoahSaso/checkmark/pkg/domain-errors"
)

// handleStatus projects the authenticated wallet's verification status.
func (h *handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	walletAddress := auth.GetWalletAddress(r.Context())
	if walletAddress == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing wallet"))
		return
	}
	h.writeStatus(w, r, walletAddress)
}

// handlePublicStatus is the unauthenticated read-only projection for any
// wallet address.
func (h *handler) handlePublicStatus(w http.ResponseWriter, r *http.Request) {
	walletAddress := chi.URLParam(r, "walletAddress")
	if walletAddress == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "missing wallet address"))
		return
	}
	h.writeStatus(w, r, walletAddress)
}

func (h *handler) writeStatus(w http.ResponseWriter, r *http.Request, walletAddress string) {
	status, err := h.deps.Checkmark.Status(r.Context(), walletAddress)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, status)
}
