package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fileforge/internal/model"
)

type MockChunkRepository struct {
	mock.Mock
}

func (m *MockChunkRepository) CreateBatch(ctx context.Context, chunks []model.Chunk) error {
	args := m.Called(ctx, chunks)
	return args.Error(0)
}

func (m *MockChunkRepository) ListByDocument(ctx context.Context, documentID string) ([]model.Chunk, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Chunk), args.Error(1)
}

func (m *MockChunkRepository) DeleteByDocument(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}
