package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"fileforge/internal/model"
	"fileforge/internal/service"
)

type MockConvertService struct {
	mock.Mock
}

func (m *MockConvertService) Upload(ctx context.Context, r io.Reader, originalFilename, contentType string, size int64, userID string, params service.ConvertParams) (*model.Document, error) {
	args := m.Called(ctx, r, originalFilename, contentType, size, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockConvertService) Process(ctx context.Context, documentID string) (*model.Document, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockConvertService) Enqueue(ctx context.Context, doc *model.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockConvertService) SupportedExtensions() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}
