package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := NewConflictError("email is already registered")
	assert.Equal(t, "email is already registered", err.Error())

	cause := errors.New("duplicate key value violates unique constraint")
	err = err.WithCause(cause)
	assert.Contains(t, err.Error(), "duplicate key")
	assert.ErrorIs(t, err, cause)
}

func TestConstructors_HTTPCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		code int
		typ  ErrorType
	}{
		{NewValidationError("bad input"), http.StatusBadRequest, ErrorTypeValidation},
		{NewConflictError("taken"), http.StatusConflict, ErrorTypeConflict},
		{NewAuthenticationError("no session"), http.StatusUnauthorized, ErrorTypeAuthentication},
		{NewAuthorizationError("admins only"), http.StatusForbidden, ErrorTypeAuthorization},
		{NewNotFoundError("user"), http.StatusNotFound, ErrorTypeNotFound},
		{NewInternalError("boom"), http.StatusInternalServerError, ErrorTypeInternal},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.code, tc.err.HTTPCode)
		assert.Equal(t, tc.typ, tc.err.Type)
	}
}

func TestValidationErrors_ToAppError(t *testing.T) {
	ve := NewValidationErrors()
	assert.False(t, ve.HasErrors())
	assert.Nil(t, ve.ToAppError())

	ve.Add("email", "email is required").Add("password", "password must be at least 8 characters")
	require.True(t, ve.HasErrors())

	appErr := ve.ToAppError()
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)

	fields, ok := appErr.Details["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "email is required", fields["email"])
	assert.Equal(t, "password must be at least 8 characters", fields["password"])
}

func TestClassifiers(t *testing.T) {
	assert.True(t, IsValidation(NewValidationError("x")))
	assert.True(t, IsValidation(NewValidationErrors().Add("f", "m")))
	assert.False(t, IsValidation(NewConflictError("x")))

	assert.True(t, IsConflict(NewConflictError("x")))
	assert.True(t, IsConflict(fmt.Errorf("wrapped: %w", ErrConflict)))
	assert.False(t, IsConflict(NewInternalError("x")))

	assert.True(t, IsAuthentication(NewAuthenticationError("x")))
	assert.True(t, IsAuthentication(fmt.Errorf("wrapped: %w", ErrUnauthorized)))
	assert.False(t, IsAuthentication(errors.New("other")))
}
