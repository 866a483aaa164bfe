package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"fileforge/internal/model"
	"fileforge/internal/repository"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) List(ctx context.Context, pq repository.PageQuery, f repository.DocumentFilter) (*repository.PageResult[model.Document], error) {
	args := m.Called(ctx, pq, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Document]), args.Error(1)
}

func (m *MockDocumentRepository) UpdateStatus(ctx context.Context, doc *model.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
