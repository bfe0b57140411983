// Package auth authenticates wallet-signed requests. A caller fetches a
// per-pubkey nonce, embeds it in the signed payload, and signs the canonical
// JSON of the payload with their secp256k1 wallet key. The wallet address is
// derived from the public key, never trusted from the request.
package auth

import (
	"context"
	"encoding/json"
)

// Auth is the authentication block every signed request carries.
type Auth struct {
	Type              string `json:"type"`
	Nonce             uint64 `json:"nonce"`
	ChainID           string `json:"chainId"`
	ChainFeeDenom     string `json:"chainFeeDenom"`
	ChainBech32Prefix string `json:"chainBech32Prefix"`
	PublicKey         string `json:"publicKey"`
}

// RequestBody is the signed envelope: the signature covers the canonical JSON
// encoding of Data.
type RequestBody struct {
	Data      json.RawMessage `json:"data"`
	Signature string          `json:"signature"`
}

type contextKeyWalletAddress struct{}
type contextKeyRequestData struct{}

// ContextKeyWalletAddress carries the derived wallet address.
var ContextKeyWalletAddress = contextKeyWalletAddress{}

// ContextKeyRequestData carries the verified request data payload.
var ContextKeyRequestData = contextKeyRequestData{}

// GetWalletAddress retrieves the authenticated wallet address from the context.
func GetWalletAddress(ctx context.Context) string {
	address, ok := ctx.Value(ContextKeyWalletAddress).(string)
	if !ok {
		return ""
	}
	return address
}

// GetRequestData retrieves the verified request data from the context.
func GetRequestData(ctx context.Context) json.RawMessage {
	data, ok := ctx.Value(ContextKeyRequestData).(json.RawMessage)
	if !ok {
		return nil
	}
	return data
}
