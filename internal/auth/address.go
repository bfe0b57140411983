package auth

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // cosmos address derivation requires ripemd160
)

// DeriveAddress computes the bech32 account address for a secp256k1 public
// key: ripemd160(sha256(compressed pubkey)) under the given prefix.
func DeriveAddress(pubKey *btcec.PublicKey, prefix string) (string, error) {
	if prefix == "" {
		return "", fmt.Errorf("empty bech32 prefix")
	}

	shaSum := sha256.Sum256(pubKey.SerializeCompressed())
	hasher := ripemd160.New()
	hasher.Write(shaSum[:])
	payload := hasher.Sum(nil)

	converted, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("convert address bits: %w", err)
	}
	address, err := bech32.Encode(prefix, converted)
	if err != nil {
		return "", fmt.Errorf("encode bech32 address: %w", err)
	}
	return address, nil
}
