package repository

import "context"

// LoginGuard throttles credential-guessing by counting failed login attempts
// per key (normalized email plus remote address).
type LoginGuard interface {
	// Allow reports whether another attempt is permitted for key.
	Allow(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	// Reset clears the counter after a successful login.
	Reset(ctx context.Context, key string) error
}
