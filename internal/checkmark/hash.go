package checkmark

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashSessionID derives the checkmark id for a session. The ledger and the
// payment contract only ever see this digest, never a raw session id.
func HashSessionID(sessionID string) string {
	sum := sha256.Sum256([]byte(sessionID))
	return hex.EncodeToString(sum[:])
}
