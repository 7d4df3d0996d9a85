package services

import (
	"context"
	"strings"

	"checkout-service/apperrors"

	"go.uber.org/zap"
)

type CheckoutService struct {
	gateway CheckoutGateway
	logger  *zap.Logger
}

func NewCheckoutService(gateway CheckoutGateway, logger *zap.Logger) *CheckoutService {
	return &CheckoutService{gateway: gateway, logger: logger}
}

// CreateSession prices the order and returns the hosted checkout URL.
// origin is the site the customer is redirected back to.
func (s *CheckoutService) CreateSession(ctx context.Context, quantity int64, planType, origin string) (string, error) {
	plan, err := BuildCheckoutPlan(quantity, PlanType(planType))
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrBadRequest, err)
	}

	origin = strings.TrimSuffix(origin, "/")
	successURL := origin + "/sucesso?session_id={CHECKOUT_SESSION_ID}"
	cancelURL := origin + "?canceled=true"

	s.logger.Info("Creating checkout session",
		zap.Int64("quantity", plan.Quantity),
		zap.String("interval", plan.Interval),
		zap.Int64("unit_amount", plan.UnitAmount),
	)

	sess, err := s.gateway.CreateCheckoutSession(ctx, plan, successURL, cancelURL)
	if err != nil {
		s.logger.Error("Failed to create checkout session", zap.Error(err))
		return "", apperrors.Wrap(apperrors.ErrCheckoutFailed, err)
	}
	return sess.URL, nil
}
