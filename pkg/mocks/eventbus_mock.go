package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/credentis/credentis/pkg/credential"
	"github.com/credentis/credentis/pkg/eventbus"
	"github.com/credentis/credentis/pkg/models"
)

// MockPublisher is a mock implementation of eventbus.Publisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, key string, event eventbus.Event) error {
	args := m.Called(ctx, key, event)

	return args.Error(0)
}

// MockIssuer is a mock implementation of credential.Issuer.
type MockIssuer struct {
	mock.Mock
}

func (m *MockIssuer) CreateOffer(ctx context.Context, req credential.OfferRequest) (*models.CredentialOffer, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.CredentialOffer), args.Error(1)
}
