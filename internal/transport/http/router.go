// Package httptransport is the thin HTTP layer. Handlers delegate to domain
// services and never embed business logic.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NoahSaso/checkmark/internal/checkmark"
	"github.com/NoahSaso/checkmark/internal/platform/middleware"
	"github.com/NoahSaso/checkmark/internal/transport/http/shared"
)

// CheckmarkService is the surface of the core the handlers consume.
type CheckmarkService interface {
	CreateSession(ctx context.Context, walletAddress, sessionID string) error
	Status(ctx context.Context, walletAddress string) (checkmark.Status, error)
	HandleWebhook(ctx context.Context, r *http.Request) (checkmark.WebhookOutcome, error)
}

// AdminService is the operator surface.
type AdminService interface {
	SetBan(ctx context.Context, actor, checkmarkID string, banned bool) error
	Revoke(ctx context.Context, actor, checkmarkID string) error
}

// NonceIssuer serves the per-pubkey nonce for signing.
type NonceIssuer interface {
	Current(ctx context.Context, publicKey string) (uint64, error)
}

// HealthChecker reports backing store liveness.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Deps carries everything the router needs.
type Deps struct {
	Checkmark  CheckmarkService
	Admin      AdminService
	Nonces     NonceIssuer
	Health     HealthChecker
	WalletAuth func(http.Handler) http.Handler
	AdminAuth  func(http.Handler) http.Handler
	// RateLimit wraps the unauthenticated endpoints when set.
	RateLimit func(http.Handler) http.Handler
	Logger    *slog.Logger
	Timeout   time.Duration
}

// NewRouter wires all endpoints behind the standard middleware chain.
func NewRouter(deps Deps) http.Handler {
	h := &handler{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.CORS)
	if deps.Timeout > 0 {
		r.Use(middleware.Timeout(deps.Timeout))
	}

	r.Get("/healthz", h.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// /metrics serves the prometheus text format, so the JSON content type
	// only wraps the API routes.
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		// The webhook stays unthrottled: throttling a provider delivery
		// delays assignments.
		r.Post("/webhook", h.handleWebhook)

		r.Group(func(r chi.Router) {
			if deps.RateLimit != nil {
				r.Use(deps.RateLimit)
			}
			r.Get("/nonce/{publicKey}", h.handleNonce)
			r.Get("/status/{walletAddress}", h.handlePublicStatus)
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.WalletAuth)
			r.Post("/session", h.handleCreateSession)
			r.Post("/status", h.handleStatus)
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.AdminAuth)
			r.Post("/admin/ban", h.handleBan)
			r.Post("/admin/revoke", h.handleRevoke)
		})
	})

	return r
}

type handler struct {
	deps Deps
}

func (h *handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.Health.Health(r.Context()); err != nil {
		shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
