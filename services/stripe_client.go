package services

import (
	"context"
	"fmt"

	"checkout-service/apperrors"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"
	"github.com/stripe/stripe-go/v80/invoice"
	"github.com/stripe/stripe-go/v80/price"
	"github.com/stripe/stripe-go/v80/product"
	"github.com/stripe/stripe-go/v80/subscription"
	"github.com/stripe/stripe-go/v80/webhook"
	"go.uber.org/zap"
)

// WebhookVerifier authenticates a raw Stripe webhook body.
type WebhookVerifier interface {
	VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error)
}

// DetailEnricher fetches the expanded objects that webhook bodies only reference by id.
type DetailEnricher interface {
	FetchSubscriptionDetail(ctx context.Context, id string) (*stripe.Subscription, error)
	FetchInvoiceDetail(ctx context.Context, id string) (*stripe.Invoice, error)
}

// CheckoutGateway creates the Stripe objects behind a checkout.
type CheckoutGateway interface {
	CreateCheckoutSession(ctx context.Context, plan CheckoutPlan, successURL, cancelURL string) (*stripe.CheckoutSession, error)
}

type StripeService struct {
	SecretKey  string
	WebhookKey string
	logger     *zap.Logger
}

func NewStripeService(secretKey, webhookKey string, logger *zap.Logger) *StripeService {
	stripe.Key = secretKey
	return &StripeService{SecretKey: secretKey, WebhookKey: webhookKey, logger: logger}
}

// VerifyWebhook checks the Stripe-Signature header against the raw body and
// decodes the event. Verification errors are logged, never returned verbatim.
func (s *StripeService) VerifyWebhook(payload []byte, sigHeader string) (stripe.Event, error) {
	if sigHeader == "" {
		s.logger.Warn("Webhook request without Stripe signature")
		return stripe.Event{}, apperrors.ErrMissingSignature
	}
	if s.WebhookKey == "" {
		s.logger.Error("Webhook called but no signing secret is configured")
		return stripe.Event{}, apperrors.ErrWebhookSecretMissing
	}

	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, s.WebhookKey, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		s.logger.Warn("Webhook signature verification failed", zap.Error(err))
		return stripe.Event{}, apperrors.Wrap(apperrors.ErrInvalidSignature, err)
	}

	s.logger.Info("Authenticated webhook event received",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
	)
	return event, nil
}

func (s *StripeService) FetchSubscriptionDetail(ctx context.Context, id string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	params.AddExpand("items.data.price.product")
	params.AddExpand("customer")

	sub, err := subscription.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve subscription %s: %w", id, err)
	}
	return sub, nil
}

func (s *StripeService) FetchInvoiceDetail(ctx context.Context, id string) (*stripe.Invoice, error) {
	params := &stripe.InvoiceParams{}
	params.Context = ctx
	params.AddExpand("subscription")

	inv, err := invoice.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve invoice %s: %w", id, err)
	}
	return inv, nil
}

// CreateCheckoutSession creates a product and a recurring price for the plan,
// then a subscription-mode checkout session selling it.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, plan CheckoutPlan, successURL, cancelURL string) (*stripe.CheckoutSession, error) {
	productParams := &stripe.ProductParams{
		Name:        stripe.String(plan.ProductTitle()),
		Description: stripe.String(plan.ProductDescription()),
	}
	productParams.Context = ctx
	productParams.AddMetadata("quantity", plan.QuantityString())
	productParams.AddMetadata("price_per_unit", plan.PricePerProxy)
	productParams.AddMetadata("plan_type", plan.PlanLabel())

	prod, err := product.New(productParams)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	priceParams := &stripe.PriceParams{
		Product:    stripe.String(prod.ID),
		UnitAmount: stripe.Int64(plan.UnitAmount),
		Currency:   stripe.String(plan.Currency),
		Recurring: &stripe.PriceRecurringParams{
			Interval: stripe.String(plan.Interval),
		},
	}
	priceParams.Context = ctx

	pr, err := price.New(priceParams)
	if err != nil {
		return nil, fmt.Errorf("create price: %w", err)
	}

	sessionParams := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(pr.ID),
				Quantity: stripe.Int64(plan.Quantity),
			},
		},
		Mode:                     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		BillingAddressCollection: stripe.String("auto"),
		PhoneNumberCollection: &stripe.CheckoutSessionPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
		ClientReferenceID: stripe.String(plan.ClientReferenceID()),
		CustomText: &stripe.CheckoutSessionCustomTextParams{
			Submit: &stripe.CheckoutSessionCustomTextSubmitParams{
				Message: stripe.String(plan.SubmitMessage()),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	sessionParams.Context = ctx
	for k, v := range plan.Metadata() {
		sessionParams.AddMetadata(k, v)
	}

	sess, err := session.New(sessionParams)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	s.logger.Info("Checkout session created",
		zap.String("session_id", sess.ID),
		zap.Int64("quantity", plan.Quantity),
		zap.String("interval", plan.Interval),
	)
	return sess, nil
}
