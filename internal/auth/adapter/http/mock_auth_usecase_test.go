package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/crstnmac/estate-broker-manager/internal/auth/domain/model"
	"github.com/crstnmac/estate-broker-manager/internal/auth/usecase"
)

type MockAuthUsecase struct {
	mock.Mock
}

func (m *MockAuthUsecase) Signup(ctx context.Context, req usecase.SignupRequest) (*model.User, string, *model.Session, error) {
	args := m.Called(ctx, req)
	user, _ := args.Get(0).(*model.User)
	session, _ := args.Get(2).(*model.Session)
	return user, args.String(1), session, args.Error(3)
}

func (m *MockAuthUsecase) Login(ctx context.Context, req usecase.LoginRequest) (*model.User, string, *model.Session, error) {
	args := m.Called(ctx, req)
	user, _ := args.Get(0).(*model.User)
	session, _ := args.Get(2).(*model.Session)
	return user, args.String(1), session, args.Error(3)
}

func (m *MockAuthUsecase) Logout(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *MockAuthUsecase) ValidateSession(ctx context.Context, token string) (*model.Session, *model.User, error) {
	args := m.Called(ctx, token)
	session, _ := args.Get(0).(*model.Session)
	user, _ := args.Get(1).(*model.User)
	return session, user, args.Error(2)
}

func (m *MockAuthUsecase) CurrentUser(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockAuthUsecase) UpdateProfile(ctx context.Context, userID int64, req usecase.UpdateProfileRequest) (*model.User, error) {
	args := m.Called(ctx, userID, req)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *MockAuthUsecase) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error {
	args := m.Called(ctx, userID, oldPassword, newPassword)
	return args.Error(0)
}

var _ usecase.AuthUsecaseInterface = (*MockAuthUsecase)(nil)
