package services

import (
	"context"
	"errors"
	"testing"

	"checkout-service/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

type MockCheckoutGateway struct{ mock.Mock }

func (m *MockCheckoutGateway) CreateCheckoutSession(ctx context.Context, plan CheckoutPlan, successURL, cancelURL string) (*stripe.CheckoutSession, error) {
	args := m.Called(ctx, plan, successURL, cancelURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.CheckoutSession), args.Error(1)
}

func TestCheckoutService_CreateSession(t *testing.T) {
	gateway := new(MockCheckoutGateway)
	gateway.On("CreateCheckoutSession", mock.Anything,
		mock.MatchedBy(func(p CheckoutPlan) bool { return p.Quantity == 10 && p.UnitAmount == 1341 && p.Interval == "month" }),
		"https://proxies.example.com/sucesso?session_id={CHECKOUT_SESSION_ID}",
		"https://proxies.example.com?canceled=true",
	).Return(&stripe.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.com/c/pay/cs_1"}, nil)

	svc := NewCheckoutService(gateway, zap.NewNop())
	url, err := svc.CreateSession(context.Background(), 10, "monthly", "https://proxies.example.com/")

	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_1", url)
	gateway.AssertExpectations(t)
}

func TestCheckoutService_InvalidPlan(t *testing.T) {
	gateway := new(MockCheckoutGateway)
	svc := NewCheckoutService(gateway, zap.NewNop())

	_, err := svc.CreateSession(context.Background(), 1, "weekly", "https://proxies.example.com")

	assert.True(t, errors.Is(err, apperrors.ErrBadRequest))
	gateway.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutService_GatewayFailure(t *testing.T) {
	gateway := new(MockCheckoutGateway)
	gateway.On("CreateCheckoutSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("card_declined"))

	svc := NewCheckoutService(gateway, zap.NewNop())
	_, err := svc.CreateSession(context.Background(), 2, "yearly", "https://proxies.example.com")

	assert.True(t, errors.Is(err, apperrors.ErrCheckoutFailed))
}
