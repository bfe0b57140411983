package auth

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"

	dErrors "github.com/NoahSaso/checkmark/pkg/domain-errors"
)

// CanonicalJSON re-encodes a JSON document deterministically: object keys
// sorted, no insignificant whitespace. Signer and verifier must agree on the
// exact bytes being signed, and raw request bodies do not guarantee key order.
func CanonicalJSON(raw json.RawMessage) ([]byte, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}

	// encoding/json writes map keys in sorted order.
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(decoded); err != nil {
		return nil, fmt.Errorf("encode canonical payload: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// ParsePublicKey decodes a hex-encoded compressed secp256k1 public key.
func ParsePublicKey(publicKeyHex string) (*btcec.PublicKey, error) {
	keyBytes, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "malformed public key")
	}
	pubKey, err := btcec.ParsePubKey(keyBytes)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid public key")
	}
	return pubKey, nil
}

// VerifySignature checks a base64 64-byte r||s secp256k1 signature over the
// sha256 digest of message.
func VerifySignature(pubKey *btcec.PublicKey, signatureB64 string, message []byte) error {
	sigBytes, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return dErrors.New(dErrors.CodeUnauthorized, "malformed signature")
	}
	if len(sigBytes) != 64 {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid signature length")
	}

	var r, s btcec.ModNScalar
	if r.SetByteSlice(sigBytes[:32]) {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid signature")
	}
	if s.SetByteSlice(sigBytes[32:]) {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid signature")
	}

	digest := sha256.Sum256(message)
	if !btcecdsa.NewSignature(&r, &s).Verify(digest[:], pubKey) {
		return dErrors.New(dErrors.CodeUnauthorized, "signature verification failed")
	}
	return nil
}
