package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"fileforge/internal/model"
	"fileforge/internal/repository"
	"fileforge/internal/service"
)

type MockAPIKeyService struct {
	mock.Mock
}

func (m *MockAPIKeyService) Create(ctx context.Context, userID, name string, expiresAt *time.Time) (*service.CreatedAPIKey, error) {
	args := m.Called(ctx, userID, name, expiresAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CreatedAPIKey), args.Error(1)
}

func (m *MockAPIKeyService) List(ctx context.Context, userID string) ([]model.APIKey, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.APIKey), args.Error(1)
}

func (m *MockAPIKeyService) Get(ctx context.Context, userID, id string) (*model.APIKey, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.APIKey), args.Error(1)
}

func (m *MockAPIKeyService) Update(ctx context.Context, userID, id string, upd repository.APIKeyUpdate) (*model.APIKey, error) {
	args := m.Called(ctx, userID, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.APIKey), args.Error(1)
}

func (m *MockAPIKeyService) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockAPIKeyService) Authenticate(ctx context.Context, fullKey string) (*model.APIKey, error) {
	args := m.Called(ctx, fullKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.APIKey), args.Error(1)
}
