// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NoahSaso/checkmark/internal/admin"
	"github.com/NoahSaso/checkmark/internal/audit"
	"github.com/NoahSaso/checkmark/internal/auth"
	"github.com/NoahSaso/checkmark/internal/checkmark"
	jwttoken "github.com/NoahSaso/checkmark/internal/jwt_token"
	"github.com/NoahSaso/checkmark/internal/ledger"
	"github.com/NoahSaso/checkmark/internal/payment"
	"github.com/NoahSaso/checkmark/internal/platform/config"
	"github.com/NoahSaso/checkmark/internal/platform/httpserver"
	"github.com/NoahSaso/checkmark/internal/platform/logger"
	"github.com/NoahSaso/checkmark/internal/platform/middleware"
	redisplatform "github.com/NoahSaso/checkmark/internal/platform/redis"
	"github.com/NoahSaso/checkmark/internal/provider"
	"github.com/NoahSaso/checkmark/internal/provider/synaps"
	"github.com/NoahSaso/checkmark/internal/ratelimit"
	"github.com/NoahSaso/checkmark/internal/session"
	httptransport "github.com/NoahSaso/checkmark/internal/transport/http"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 10 * time.Second
	auditInboxSize  = 256
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	redisClient, err := redisplatform.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	registry := provider.NewRegistry()
	registry.Register(synaps.ID, func() (provider.Provider, error) {
		return synaps.New(synaps.Config{
			BaseURL:       cfg.SynapsBaseURL,
			ClientID:      cfg.SynapsClientID,
			APIKey:        cfg.SynapsAPIKey,
			WebhookSecret: cfg.SynapsWebhookSecret,
		}), nil
	})
	prov, err := registry.Load(cfg.ProviderID)
	if err != nil {
		log.Error("failed to load verification provider", "error", err)
		os.Exit(1)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auditStore := audit.NewMemoryStore()
	auditInbox := make(chan audit.Event, auditInboxSize)
	auditWorker := audit.NewWorker(auditStore, auditInbox, log)
	go func() {
		if err := auditWorker.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()
	auditPub := audit.NewAsyncPublisher(auditStore, auditInbox)

	sessions := session.New(session.NewRedis(redisClient.Client))
	ldgr := ledger.NewLCD(cfg.ChainLCDURL, cfg.SignerRelayURL, cfg.CheckmarkContractAddress)
	payments := payment.NewReceipt(cfg.ChainLCDURL, cfg.PaymentContractAddress, payment.Expected{
		Amount: cfg.PaymentAmount,
		Denom:  cfg.PaymentDenom,
		CW20:   cfg.PaymentDenomCW20,
	})

	svc := checkmark.New(sessions, ldgr, payments, prov, auditPub, log)
	adminSvc := admin.New(ldgr, auditPub, log)

	nonces := auth.NewRedisNonceStore(redisClient.Client, cfg.NonceTTL)
	tokens := jwttoken.NewService(cfg.JWTSigningKey, "checkmark")
	limiter := ratelimit.NewMiddleware(
		ratelimit.NewRedisStore(redisClient.Client),
		log,
		cfg.RateLimitPerMinute,
		time.Minute,
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Checkmark:  svc,
		Admin:      adminSvc,
		Nonces:     nonces,
		Health:     redisClient,
		WalletAuth: auth.RequireWalletAuth(nonces, log),
		AdminAuth:  middleware.RequireAdmin(tokens, log),
		RateLimit:  limiter.Limit,
		Logger:     log,
		Timeout:    requestTimeout,
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting checkmark server", "addr", cfg.Addr, "provider", cfg.ProviderID)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
