// Package mocks provides test doubles for the product client.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	product "github.com/prodmap/assist/pkg/product"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// GetContext provides a mock function with given fields: ctx, productID
func (_m *MockClient) GetContext(ctx context.Context, productID string) (*product.ContextResponse, error) {
	ret := _m.Called(ctx, productID)

	if len(ret) == 0 {
		panic("no return value specified for GetContext")
	}

	var r0 *product.ContextResponse
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*product.ContextResponse, error)); ok {
		return rf(ctx, productID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *product.ContextResponse); ok {
		r0 = rf(ctx, productID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*product.ContextResponse)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, productID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
