package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/NoahSaso/checkmark/internal/transport/http/shared"
	dErrors "github.com/NoahSaso/checkmark/pkg/domain-errors"
)

// handleNonce serves the nonce the wallet must embed in its next signed
// request.
func (h *handler) handleNonce(w http.ResponseWriter, r *http.Request) {
	publicKey := chi.URLParam(r, "publicKey")
	if publicKey == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "missing public key"))
		return
	}

	nonce, err := h.deps.Nonces.Current(r.Context(), publicKey)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "load nonce"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]uint64{"nonce": nonce})
}
