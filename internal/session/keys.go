package session

// The key space holds four mappings, each its own prefix. Values are plain
// strings; the seen marker's value is never read, only its presence.

// WalletForPendingSessionKey maps a pending session ID to the wallet address
// that initiated it.
func WalletForPendingSessionKey(sessionID string) string {
	return "WALLET_FOR:" + sessionID
}

// PendingSessionForWalletKey maps a wallet address to the pending session ID
// it initiated.
func PendingSessionForWalletKey(walletAddress string) string {
	return "PENDING_SESSION_FOR:" + walletAddress
}

// SeenSessionKey marks a session ID as consumed. Write-once.
func SeenSessionKey(sessionID string) string {
	return "SESSION_SEEN:" + sessionID
}

// CurrentSessionForInitialSessionKey maps an identity's initial session ID to
// the session ID whose success currently backs its checkmark. Equal to the
// initial session ID on the first successful verification; advanced to newer
// attempts when a deleted checkmark is re-assigned after re-verification.
func CurrentSessionForInitialSessionKey(initialSessionID string) string {
	return "CURRENT_SESSION_FOR:" + initialSessionID
}
