package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	dErrors "github.com/NoahSaso/checkmark/pkg/domain-errors"
)

const maxBodyBytes = 1 << 20

// RequireWalletAuth authenticates the request body signature and injects the
// derived wallet address and verified data payload into the context. The
// nonce is consumed only after the signature checks out, so failed attempts
// do not advance it.
func RequireWalletAuth(nonces NonceStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			body, err := parseBody(r)
			if err != nil {
				deny(w, r, logger, err)
				return
			}

			var payload struct {
				Auth Auth `json:"auth"`
			}
			if err := json.Unmarshal(body.Data, &payload); err != nil {
				deny(w, r, logger, dErrors.New(dErrors.CodeUnauthorized, "malformed auth payload"))
				return
			}

			pubKey, err := ParsePublicKey(payload.Auth.PublicKey)
			if err != nil {
				deny(w, r, logger, err)
				return
			}

			expected, err := nonces.Current(ctx, payload.Auth.PublicKey)
			if err != nil {
				deny(w, r, logger, dErrors.Wrap(err, dErrors.CodeInternal, "load nonce"))
				return
			}
			if payload.Auth.Nonce != expected {
				deny(w, r, logger, dErrors.New(dErrors.CodeUnauthorized, "invalid nonce"))
				return
			}

			message, err := CanonicalJSON(body.Data)
			if err != nil {
				deny(w, r, logger, dErrors.New(dErrors.CodeUnauthorized, "malformed payload"))
				return
			}
			if err := VerifySignature(pubKey, body.Signature, message); err != nil {
				deny(w, r, logger, err)
				return
			}

			if err := nonces.Consume(ctx, payload.Auth.PublicKey); err != nil {
				deny(w, r, logger, dErrors.Wrap(err, dErrors.CodeInternal, "consume nonce"))
				return
			}

			walletAddress, err := DeriveAddress(pubKey, payload.Auth.ChainBech32Prefix)
			if err != nil {
				deny(w, r, logger, dErrors.New(dErrors.CodeUnauthorized, "cannot derive wallet address"))
				return
			}

			ctx = context.WithValue(ctx, ContextKeyWalletAddress, walletAddress)
			ctx = context.WithValue(ctx, ContextKeyRequestData, body.Data)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseBody(r *http.Request) (RequestBody, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return RequestBody{}, dErrors.New(dErrors.CodeBadRequest, "cannot read request body")
	}

	var body RequestBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return RequestBody{}, dErrors.New(dErrors.CodeBadRequest, "malformed request body")
	}
	if len(body.Data) == 0 || body.Signature == "" {
		return RequestBody{}, dErrors.New(dErrors.CodeUnauthorized, "missing data or signature")
	}
	return body, nil
}

func deny(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	logger.WarnContext(r.Context(), "wallet authentication failed", "error", err)
	status := dErrors.ToHTTPStatus(dErrors.CodeOf(err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	message := "unauthorized"
	var coded *dErrors.Error
	if errors.As(err, &coded) {
		message = coded.Message
	}
	_, _ = fmt.Fprintf(w, `{"error":%q}`, message)
}
