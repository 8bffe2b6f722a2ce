package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// tokenBytes gives 256 bits of entropy, comfortably above the 160-bit floor
// for unguessable bearer tokens.
const tokenBytes = 32

// SessionTokenSource mints opaque session tokens. The value handed to the
// client is random and never persisted; the store is keyed by SessionID.
type SessionTokenSource struct{}

func NewSessionTokenSource() *SessionTokenSource {
	return &SessionTokenSource{}
}

// Generate returns a cryptographically random token encoded with the
// URL-safe alphabet and no padding, safe for cookie transport.
func (s *SessionTokenSource) Generate() (string, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// SessionID derives the store identifier for a token: the hex SHA-256 of the
// token string. Deterministic, so validation recomputes it per request.
func (s *SessionTokenSource) SessionID(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
