package contextkeys

// contextKey is an unexported type to prevent collisions with context keys
// defined in other packages.
type contextKey string

// String makes contextKey satisfy the Stringer interface to assist with debugging.
func (c contextKey) String() string {
	return "estate-broker-manager context key " + string(c)
}

// UserIDKey holds the authenticated user's ID (int64).
const UserIDKey = contextKey("userID")

// UserEmailKey holds the authenticated user's email.
const UserEmailKey = contextKey("userEmail")

// UserRoleKey holds the authenticated user's role.
const UserRoleKey = contextKey("userRole")

// SessionIDKey holds the current session's store identifier.
const SessionIDKey = contextKey("sessionID")

// RequestIDKey holds the per-request correlation ID.
const RequestIDKey = contextKey("requestID")

// ComponentKey and OperationKey annotate log context.
const (
	ComponentKey = contextKey("component")
	OperationKey = contextKey("operation")
)
