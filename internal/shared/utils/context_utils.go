package utils

import (
	"context"
	"errors"

	"github.com/crstnmac/estate-broker-manager/internal/shared/contextkeys"
)

// Common context errors
var (
	ErrUserIDNotFound    = errors.New("userID not found in context")
	ErrUserEmailNotFound = errors.New("userEmail not found in context")
	ErrSessionIDNotFound = errors.New("sessionID not found in context")
	ErrRequestIDNotFound = errors.New("requestID not found in context")
)

// GetUserIDFromContext retrieves the authenticated user's ID from the context.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(int64)
	if !ok {
		return 0, ErrUserIDNotFound
	}
	return userID, nil
}

// GetUserEmailFromContext retrieves the authenticated user's email from the context.
func GetUserEmailFromContext(ctx context.Context) (string, error) {
	email, ok := ctx.Value(contextkeys.UserEmailKey).(string)
	if !ok || email == "" {
		return "", ErrUserEmailNotFound
	}
	return email, nil
}

// GetSessionIDFromContext retrieves the current session's identifier from the context.
func GetSessionIDFromContext(ctx context.Context) (string, error) {
	sessionID, ok := ctx.Value(contextkeys.SessionIDKey).(string)
	if !ok || sessionID == "" {
		return "", ErrSessionIDNotFound
	}
	return sessionID, nil
}

// GetRequestIDFromContext retrieves the request correlation ID from the context.
func GetRequestIDFromContext(ctx context.Context) (string, error) {
	requestID, ok := ctx.Value(contextkeys.RequestIDKey).(string)
	if !ok || requestID == "" {
		return "", ErrRequestIDNotFound
	}
	return requestID, nil
}
