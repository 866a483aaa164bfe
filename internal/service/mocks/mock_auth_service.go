package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fileforge/internal/model"
	"fileforge/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, email, name, password string) (*model.User, error) {
	args := m.Called(ctx, email, name, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) VerifyEmail(ctx context.Context, email, code string) (*model.User, error) {
	args := m.Called(ctx, email, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) ResendCode(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string, meta service.SessionMeta) (*model.User, string, error) {
	args := m.Called(ctx, email, password, meta)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*model.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}
