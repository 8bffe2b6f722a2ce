package repository

// PasswordHasher defines the one-way credential hashing contract.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify reports whether password matches digest. A malformed digest is
	// a mismatch, not an error.
	Verify(password, digest string) bool
}

// TokenSource mints opaque session tokens and derives the identifier a
// session is stored under.
type TokenSource interface {
	Generate() (string, error)
	// SessionID derives the deterministic store identifier for a token.
	SessionID(token string) string
}
