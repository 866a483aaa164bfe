package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"fileforge/internal/model"
	"fileforge/internal/repository"
)

type MockAPIKeyRepository struct {
	mock.Mock
}

func (m *MockAPIKeyRepository) Create(ctx context.Context, key *model.APIKey) (*model.APIKey, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if rf, ok := args.Get(0).(func(context.Context, *model.APIKey) *model.APIKey); ok {
		return rf(ctx, key), args.Error(1)
	}
	return args.Get(0).(*model.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) FindByID(ctx context.Context, id string) (*model.APIKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) FindByHash(ctx context.Context, keyHash string) (*model.APIKey, error) {
	args := m.Called(ctx, keyHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) ListByUser(ctx context.Context, userID string) ([]model.APIKey, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) Update(ctx context.Context, id string, upd repository.APIKeyUpdate) (*model.APIKey, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.APIKey), args.Error(1)
}

func (m *MockAPIKeyRepository) Touch(ctx context.Context, id string, usedAt time.Time) error {
	args := m.Called(ctx, id, usedAt)
	return args.Error(0)
}

func (m *MockAPIKeyRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
