package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/crstnmac/estate-broker-manager/internal/auth/domain/model"
	"github.com/crstnmac/estate-broker-manager/internal/auth/usecase"
	apperrors "github.com/crstnmac/estate-broker-manager/internal/shared/errors"
	"github.com/crstnmac/estate-broker-manager/internal/shared/logger"
)

type AuthRouterTestSuite struct {
	suite.Suite
	app    *fiber.App
	authUC *MockAuthUsecase
	cookie *SessionCookie
}

func (s *AuthRouterTestSuite) SetupTest() {
	s.authUC = new(MockAuthUsecase)
	s.cookie = &SessionCookie{
		Name:     "session",
		Path:     "/",
		SameSite: "Lax",
		Secure:   true,
		HTTPOnly: true,
	}
	log := logger.NewLogger()

	s.app = fiber.New()
	handler := NewAuthHTTPHandler(s.authUC, s.cookie, log)
	mw := NewAuthMiddleware(s.authUC, s.cookie, log)
	SetupAuthRoutesWithMiddleware(s.app.Group("/auth"), handler, mw)
}

func (s *AuthRouterTestSuite) jsonRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (s *AuthRouterTestSuite) decodeBody(resp *http.Response, out interface{}) {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Require().NoError(json.Unmarshal(raw, out))
}

func sessionCookieOf(resp *http.Response) *http.Cookie {
	for _, ck := range resp.Cookies() {
		if ck.Name == "session" {
			return ck
		}
	}
	return nil
}

func (s *AuthRouterTestSuite) TestSignupCreated() {
	expiry := time.Now().Add(720 * time.Hour)
	s.authUC.On("Signup", mock.Anything, mock.MatchedBy(func(req usecase.SignupRequest) bool {
		return req.Email == "jane@brokerage.test"
	})).Return(
		&model.User{ID: 7, Name: "Jane Realtor", Email: "jane@brokerage.test", Role: model.RoleAgent},
		"opaque-token",
		&model.Session{ID: "sid", UserID: 7, ExpiresAt: expiry},
		nil,
	)

	resp, err := s.app.Test(s.jsonRequest(fiber.MethodPost, "/auth/signup", map[string]string{
		"name": "Jane Realtor", "email": "jane@brokerage.test", "password": "s3cret-pass",
	}))
	s.Require().NoError(err)
	s.Equal(fiber.StatusCreated, resp.StatusCode)

	ck := sessionCookieOf(resp)
	s.Require().NotNil(ck)
	s.Equal("opaque-token", ck.Value)
	s.Equal("/", ck.Path)
	s.True(ck.HttpOnly)
	s.True(ck.Secure)
	s.Equal(http.SameSiteLaxMode, ck.SameSite)

	var body AuthResponse
	s.decodeBody(resp, &body)
	s.Require().NotNil(body.User)
	s.Equal("jane@brokerage.test", body.User.Email)
}

func (s *AuthRouterTestSuite) TestSignupConflict() {
	s.authUC.On("Signup", mock.Anything, mock.Anything).Return(nil, "", nil, model.ErrEmailTaken)

	resp, err := s.app.Test(s.jsonRequest(fiber.MethodPost, "/auth/signup", map[string]string{
		"name": "Jane Realtor", "email": "jane@brokerage.test", "password": "s3cret-pass",
	}))
	s.Require().NoError(err)
	s.Equal(fiber.StatusConflict, resp.StatusCode)
	s.Nil(sessionCookieOf(resp))

	var body ErrorResponse
	s.decodeBody(resp, &body)
	s.Equal("Email already registered", body.Error)
}

func (s *AuthRouterTestSuite) TestSignupValidationDetails() {
	appErr := apperrors.NewValidationErrors().
		Add("email", "email must be a valid email address").
		Add("password", "password must be at least 8 characters").
		ToAppError()
	s.authUC.On("Signup", mock.Anything, mock.Anything).Return(nil, "", nil, appErr)

	resp, err := s.app.Test(s.jsonRequest(fiber.MethodPost, "/auth/signup", map[string]string{
		"name": "Jane", "email": "nope", "password": "short",
	}))
	s.Require().NoError(err)
	s.Equal(fiber.StatusBadRequest, resp.StatusCode)

	var body ErrorResponse
	s.decodeBody(resp, &body)
	fields := body.Details["fields"].(map[string]interface{})
	s.Contains(fields, "email")
	s.Contains(fields, "password")
}

func (s *AuthRouterTestSuite) TestLoginOK() {
	expiry := time.Now().Add(720 * time.Hour)
	s.authUC.On("Login", mock.Anything, mock.MatchedBy(func(req usecase.LoginRequest) bool {
		return req.Email == "jane@brokerage.test" && req.RemoteIP != ""
	})).Return(
		&model.User{ID: 7, Email: "jane@brokerage.test", Role: model.RoleAgent},
		"opaque-token",
		&model.Session{ID: "sid", UserID: 7, ExpiresAt: expiry},
		nil,
	)

	resp, err := s.app.Test(s.jsonRequest(fiber.MethodPost, "/auth/login", map[string]string{
		"email": "jane@brokerage.test", "password": "s3cret-pass",
	}))
	s.Require().NoError(err)
	s.Equal(fiber.StatusOK, resp.StatusCode)
	s.Require().NotNil(sessionCookieOf(resp))
}

func (s *AuthRouterTestSuite) TestLoginFailuresAreIndistinguishable() {
	s.authUC.On("Login", mock.Anything, mock.Anything).Return(nil, "", nil, usecase.ErrInvalidCredentials)

	unknown, err := s.app.Test(s.jsonRequest(fiber.MethodPost, "/auth/login", map[string]string{
		"email": "ghost@brokerage.test", "password": "whatever-pass",
	}))
	s.Require().NoError(err)
	wrong, err := s.app.Test(s.jsonRequest(fiber.MethodPost, "/auth/login", map[string]string{
		"email": "jane@brokerage.test", "password": "wrong-password",
	}))
	s.Require().NoError(err)

	s.Equal(fiber.StatusUnauthorized, unknown.StatusCode)
	s.Equal(fiber.StatusUnauthorized, wrong.StatusCode)

	unknownBody, _ := io.ReadAll(unknown.Body)
	wrongBody, _ := io.ReadAll(wrong.Body)
	s.Equal(string(unknownBody), string(wrongBody))
	s.Nil(sessionCookieOf(unknown))
}

func (s *AuthRouterTestSuite) TestLoginThrottled() {
	s.authUC.On("Login", mock.Anything, mock.Anything).Return(nil, "", nil, usecase.ErrTooManyAttempts)

	resp, err := s.app.Test(s.jsonRequest(fiber.MethodPost, "/auth/login", map[string]string{
		"email": "jane@brokerage.test", "password": "s3cret-pass",
	}))
	s.Require().NoError(err)
	s.Equal(fiber.StatusTooManyRequests, resp.StatusCode)
}

func (s *AuthRouterTestSuite) TestLogoutClearsCookie() {
	session := &model.Session{ID: "sid", UserID: 7, ExpiresAt: time.Now().Add(time.Hour)}
	user := &model.User{ID: 7, Email: "jane@brokerage.test", IsActive: true}
	s.authUC.On("ValidateSession", mock.Anything, "opaque-token").Return(session, user, nil)
	s.authUC.On("Logout", mock.Anything, "sid").Return(nil)

	req := s.jsonRequest(fiber.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "opaque-token"})

	resp, err := s.app.Test(req)
	s.Require().NoError(err)
	s.Equal(fiber.StatusOK, resp.StatusCode)

	ck := sessionCookieOf(resp)
	s.Require().NotNil(ck)
	s.Empty(ck.Value)
	s.True(ck.Expires.Before(time.Now()))
	s.authUC.AssertCalled(s.T(), "Logout", mock.Anything, "sid")
}

func (s *AuthRouterTestSuite) TestLogoutWithoutSessionStillSucceeds() {
	s.authUC.On("ValidateSession", mock.Anything, "").Return(nil, nil, nil)

	resp, err := s.app.Test(s.jsonRequest(fiber.MethodPost, "/auth/logout", nil))
	s.Require().NoError(err)
	s.Equal(fiber.StatusOK, resp.StatusCode)

	ck := sessionCookieOf(resp)
	s.Require().NotNil(ck)
	s.Empty(ck.Value)
	s.authUC.AssertNotCalled(s.T(), "Logout")
}

func (s *AuthRouterTestSuite) TestLogoutWithDeadCookieStillSucceeds() {
	s.authUC.On("ValidateSession", mock.Anything, "stale-token").Return(nil, nil, nil)

	req := s.jsonRequest(fiber.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "stale-token"})

	resp, err := s.app.Test(req)
	s.Require().NoError(err)
	s.Equal(fiber.StatusOK, resp.StatusCode)

	ck := sessionCookieOf(resp)
	s.Require().NotNil(ck)
	s.Empty(ck.Value)
}

func (s *AuthRouterTestSuite) TestGetCurrentUser() {
	session := &model.Session{ID: "sid", UserID: 7, ExpiresAt: time.Now().Add(time.Hour)}
	user := &model.User{ID: 7, Name: "Jane Realtor", Email: "jane@brokerage.test", Role: model.RoleAgent, IsActive: true}
	s.authUC.On("ValidateSession", mock.Anything, "opaque-token").Return(session, user, nil)
	s.authUC.On("CurrentUser", mock.Anything, int64(7)).Return(user, nil)

	req := httptest.NewRequest(fiber.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "opaque-token"})

	resp, err := s.app.Test(req)
	s.Require().NoError(err)
	s.Equal(fiber.StatusOK, resp.StatusCode)

	var body AuthResponse
	s.decodeBody(resp, &body)
	s.Require().NotNil(body.User)
	s.Equal(int64(7), body.User.ID)
	s.Empty(body.User.PasswordHash)
}

func (s *AuthRouterTestSuite) TestChangePasswordClearsCookie() {
	session := &model.Session{ID: "sid", UserID: 7, ExpiresAt: time.Now().Add(time.Hour)}
	user := &model.User{ID: 7, Email: "jane@brokerage.test", IsActive: true}
	s.authUC.On("ValidateSession", mock.Anything, "opaque-token").Return(session, user, nil)
	s.authUC.On("ChangePassword", mock.Anything, int64(7), "old-password", "new-password").Return(nil)

	req := s.jsonRequest(fiber.MethodPost, "/auth/change-password", map[string]string{
		"old_password": "old-password", "new_password": "new-password",
	})
	req.AddCookie(&http.Cookie{Name: "session", Value: "opaque-token"})

	resp, err := s.app.Test(req)
	s.Require().NoError(err)
	s.Equal(fiber.StatusOK, resp.StatusCode)

	ck := sessionCookieOf(resp)
	s.Require().NotNil(ck)
	s.Empty(ck.Value)
}

func (s *AuthRouterTestSuite) TestUnhandledErrorIsOpaque() {
	s.authUC.On("Login", mock.Anything, mock.Anything).Return(nil, "", nil, io.ErrUnexpectedEOF)

	resp, err := s.app.Test(s.jsonRequest(fiber.MethodPost, "/auth/login", map[string]string{
		"email": "jane@brokerage.test", "password": "s3cret-pass",
	}))
	s.Require().NoError(err)
	s.Equal(fiber.StatusInternalServerError, resp.StatusCode)

	var body ErrorResponse
	s.decodeBody(resp, &body)
	s.Equal("Internal server error", body.Error)
	s.NotContains(body.Error, "EOF")
}

func TestAuthRouterTestSuite(t *testing.T) {
	suite.Run(t, new(AuthRouterTestSuite))
}
