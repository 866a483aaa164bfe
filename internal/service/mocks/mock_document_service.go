package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fileforge/internal/model"
	"fileforge/internal/repository"
	"fileforge/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) List(ctx context.Context, limit, offset int, filter repository.DocumentFilter) (*service.DocumentListResult, error) {
	args := m.Called(ctx, limit, offset, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) GetWithChunks(ctx context.Context, id string) (*service.DocumentWithChunks, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentWithChunks), args.Error(1)
}

func (m *MockDocumentService) Chunks(ctx context.Context, id string) ([]model.Chunk, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Chunk), args.Error(1)
}

func (m *MockDocumentService) LLMFormat(ctx context.Context, id string, includeRawText bool) (*service.LLMDocument, error) {
	args := m.Called(ctx, id, includeRawText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LLMDocument), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDocumentService) Reprocess(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}
