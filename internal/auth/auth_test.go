package auth

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ripemd160"
)

// signer holds a throwaway wallet key for building authenticated requests.
type signer struct {
	priv   *btcec.PrivateKey
	pubHex string
}

func newSigner(t *testing.T) *signer {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return &signer{
		priv:   priv,
		pubHex: hex.EncodeToString(priv.PubKey().SerializeCompressed()),
	}
}

// sign produces the base64 r||s signature over the sha256 digest of message.
// SignCompact emits [header || r(32) || s(32)]; dropping the recovery header
// leaves the fixed-width form the verifier expects.
func (s *signer) sign(t *testing.T, message []byte) string {
	t.Helper()
	digest := sha256.Sum256(message)
	compact, err := btcecdsa.SignCompact(s.priv, digest[:], true)
	require.NoError(t, err)
	require.Len(t, compact, 65)
	return base64.StdEncoding.EncodeToString(compact[1:])
}

// request builds a signed POST body for the given nonce and inner payload.
func (s *signer) request(t *testing.T, nonce uint64, extra map[string]any) *http.Request {
	t.Helper()

	data := map[string]any{
		"auth": Auth{
			Type:              "checkmark",
			Nonce:             nonce,
			ChainID:           "juno-1",
			ChainFeeDenom:     "ujuno",
			ChainBech32Prefix: "juno",
			PublicKey:         s.pubHex,
		},
	}
	for key, value := range extra {
		data[key] = value
	}

	rawData, err := json.Marshal(data)
	require.NoError(t, err)
	canonical, err := CanonicalJSON(rawData)
	require.NoError(t, err)

	body, err := json.Marshal(RequestBody{
		Data:      rawData,
		Signature: s.sign(t, canonical),
	})
	require.NoError(t, err)

	return httptest.NewRequest("POST", "/session", bytes.NewReader(body))
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// capture records what the wrapped handler saw.
type capture struct {
	called bool
	wallet string
	data   json.RawMessage
}

func (c *capture) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.called = true
		c.wallet = GetWalletAddress(r.Context())
		c.data = GetRequestData(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireWalletAuth_Success(t *testing.T) {
	s := newSigner(t)
	nonces := NewMemoryNonceStore()
	var c capture

	rec := httptest.NewRecorder()
	RequireWalletAuth(nonces, testLogger())(c.handler()).ServeHTTP(rec, s.request(t, 0, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, c.called)
	assert.True(t, strings.HasPrefix(c.wallet, "juno1"), "wallet %q should carry the chain prefix", c.wallet)
	assert.NotEmpty(t, c.data)

	// The nonce advanced.
	next, err := nonces.Current(context.Background(), s.pubHex)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), next)
}

func TestRequireWalletAuth_ReplayRejected(t *testing.T) {
	s := newSigner(t)
	nonces := NewMemoryNonceStore()
	var c capture
	middleware := RequireWalletAuth(nonces, testLogger())(c.handler())

	first := s.request(t, 0, nil)
	firstBody, err := io.ReadAll(first.Body)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	middleware.ServeHTTP(rec, httptest.NewRequest("POST", "/session", bytes.NewReader(firstBody)))
	require.Equal(t, http.StatusOK, rec.Code)

	// The identical capture replays with a now-consumed nonce.
	rec = httptest.NewRecorder()
	middleware.ServeHTTP(rec, httptest.NewRequest("POST", "/session", bytes.NewReader(firstBody)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireWalletAuth_WrongNonce(t *testing.T) {
	s := newSigner(t)
	var c capture

	rec := httptest.NewRecorder()
	RequireWalletAuth(NewMemoryNonceStore(), testLogger())(c.handler()).ServeHTTP(rec, s.request(t, 7, nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, c.called)
}

func TestRequireWalletAuth_TamperedPayload(t *testing.T) {
	s := newSigner(t)
	var c capture

	req := s.request(t, 0, map[string]any{"session_id": "s1"})
	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	tampered := bytes.Replace(raw, []byte(`"s1"`), []byte(`"s2"`), 1)

	rec := httptest.NewRecorder()
	RequireWalletAuth(NewMemoryNonceStore(), testLogger())(c.handler()).
		ServeHTTP(rec, httptest.NewRequest("POST", "/session", bytes.NewReader(tampered)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, c.called)
}

func TestRequireWalletAuth_SignatureFromOtherKey(t *testing.T) {
	victim := newSigner(t)
	attacker := newSigner(t)
	var c capture

	// Attacker signs a payload claiming the victim's public key.
	data := map[string]any{
		"auth": Auth{
			Nonce:             0,
			ChainBech32Prefix: "juno",
			PublicKey:         victim.pubHex,
		},
	}
	rawData, err := json.Marshal(data)
	require.NoError(t, err)
	canonical, err := CanonicalJSON(rawData)
	require.NoError(t, err)
	body, err := json.Marshal(RequestBody{Data: rawData, Signature: attacker.sign(t, canonical)})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	RequireWalletAuth(NewMemoryNonceStore(), testLogger())(c.handler()).
		ServeHTTP(rec, httptest.NewRequest("POST", "/session", bytes.NewReader(body)))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, c.called)
}

func TestRequireWalletAuth_MalformedBody(t *testing.T) {
	var c capture

	rec := httptest.NewRecorder()
	RequireWalletAuth(NewMemoryNonceStore(), testLogger())(c.handler()).
		ServeHTTP(rec, httptest.NewRequest("POST", "/session", strings.NewReader("not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, c.called)
}

func TestDeriveAddress(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	address, err := DeriveAddress(priv.PubKey(), "juno")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(address, "juno1"))

	// Deterministic.
	again, err := DeriveAddress(priv.PubKey(), "juno")
	require.NoError(t, err)
	assert.Equal(t, address, again)

	// Round-trips to ripemd160(sha256(pubkey)).
	prefix, decoded, err := bech32.Decode(address)
	require.NoError(t, err)
	assert.Equal(t, "juno", prefix)
	payload, err := bech32.ConvertBits(decoded, 5, 8, false)
	require.NoError(t, err)

	shaSum := sha256.Sum256(priv.PubKey().SerializeCompressed())
	hasher := ripemd160.New()
	hasher.Write(shaSum[:])
	assert.Equal(t, hasher.Sum(nil), payload)
}

func TestDeriveAddress_EmptyPrefix(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	_, err = DeriveAddress(priv.PubKey(), "")
	assert.Error(t, err)
}

func TestCanonicalJSON_KeyOrderIndependent(t *testing.T) {
	a, err := CanonicalJSON(json.RawMessage(`{"b":1,"a":{"y":2,"x":3}}`))
	require.NoError(t, err)
	b, err := CanonicalJSON(json.RawMessage(`{"a":{"x":3,"y":2},"b":1}`))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestNonceStores(t *testing.T) {
	store := NewMemoryNonceStore()
	ctx := context.Background()

	current, err := store.Current(ctx, "pk")
	require.NoError(t, err)
	assert.Zero(t, current)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Consume(ctx, "pk"))
	}
	current, err = store.Current(ctx, "pk")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), current)

	// Independent per public key.
	other, err := store.Current(ctx, fmt.Sprintf("pk-%d", 2))
	require.NoError(t, err)
	assert.Zero(t, other)
}
