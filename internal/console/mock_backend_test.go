package console

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/maltedev/product-compare/internal/models"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) response(args mock.Arguments) (*models.Response, error) {
	resp, _ := args.Get(0).(*models.Response)
	return resp, args.Error(1)
}

func (m *MockBackend) SaveSelection(ctx context.Context, req *models.SaveRequest) (*models.Response, error) {
	return m.response(m.Called(ctx, req))
}

func (m *MockBackend) ClearProducts(ctx context.Context) (*models.Response, error) {
	return m.response(m.Called(ctx))
}

func (m *MockBackend) ClearMomoProducts(ctx context.Context) (*models.Response, error) {
	return m.response(m.Called(ctx))
}

func (m *MockBackend) ClearPchomeProducts(ctx context.Context) (*models.Response, error) {
	return m.response(m.Called(ctx))
}

func (m *MockBackend) InitializePchome(ctx context.Context) (*models.Response, error) {
	return m.response(m.Called(ctx))
}

func (m *MockBackend) DeleteLabeledProduct(ctx context.Context, momoSKU string) (*models.Response, error) {
	return m.response(m.Called(ctx, momoSKU))
}
