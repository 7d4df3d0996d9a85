package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"checkout-service/models"

	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

// Normalizer turns a verified Stripe event into a relay payload. The boolean
// is false when nothing should be relayed.
type Normalizer interface {
	Normalize(ctx context.Context, event stripe.Event) (models.NormalizedPayload, bool)
}

// eventHandler maps one Stripe event type. It returns the local event_type and
// the payload body, or ok=false to drop the event.
type eventHandler func(ctx context.Context, event stripe.Event) (eventType string, body interface{}, ok bool)

type EventNormalizer struct {
	enricher    DetailEnricher
	environment string
	logger      *zap.Logger
	now         func() time.Time
	handlers    map[stripe.EventType]eventHandler
}

func NewEventNormalizer(enricher DetailEnricher, environment string, logger *zap.Logger) *EventNormalizer {
	n := &EventNormalizer{
		enricher:    enricher,
		environment: environment,
		logger:      logger,
		now:         time.Now,
	}
	n.handlers = map[stripe.EventType]eventHandler{
		stripe.EventTypeCheckoutSessionCompleted:    n.checkoutCompleted,
		stripe.EventTypeCustomerSubscriptionCreated: n.subscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated: n.subscriptionChanged(models.EventSubscriptionUpdated),
		stripe.EventTypeCustomerSubscriptionDeleted: n.subscriptionChanged(models.EventSubscriptionDeleted),
		stripe.EventTypeInvoicePaymentSucceeded:     n.invoicePaid,
		stripe.EventTypeInvoicePaymentFailed:        n.invoicePaymentFailed,
		stripe.EventTypePaymentIntentSucceeded:      n.paymentSucceeded,
		stripe.EventTypePaymentIntentPaymentFailed:  n.paymentFailed,
	}
	return n
}

func (n *EventNormalizer) Normalize(ctx context.Context, event stripe.Event) (models.NormalizedPayload, bool) {
	handle, ok := n.handlers[event.Type]
	if !ok {
		n.logger.Info("Unhandled event type", zap.String("event_type", string(event.Type)), zap.String("event_id", event.ID))
		return nil, false
	}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		n.logger.Warn("Event without data object", zap.String("event_id", event.ID))
		return nil, false
	}

	eventType, body, ok := handle(ctx, event)
	if !ok {
		return nil, false
	}

	payload, err := n.build(eventType, body)
	if err != nil {
		n.logger.Error("Failed to build normalized payload", zap.String("event_id", event.ID), zap.Error(err))
		return nil, false
	}
	return payload, true
}

// build flattens body into a map, stamps it and redacts it.
func (n *EventNormalizer) build(eventType string, body interface{}) (models.NormalizedPayload, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	payload := models.NormalizedPayload{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("unmarshal %s payload: %w", eventType, err)
	}

	payload["event_type"] = eventType
	payload["timestamp"] = n.now().UTC().Format(models.TimeLayout)
	payload["environment"] = n.environment

	return RedactSensitive(payload).(models.NormalizedPayload), nil
}

func (n *EventNormalizer) decode(event stripe.Event, v interface{}) bool {
	if err := json.Unmarshal(event.Data.Raw, v); err != nil {
		n.logger.Warn("Could not decode event object",
			zap.String("event_id", event.ID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (n *EventNormalizer) enrichmentFailed(event stripe.Event, basicType string, err error) {
	n.logger.Warn("Enrichment failed, relaying basic payload",
		zap.String("event_id", event.ID),
		zap.String("event_type", basicType),
		zap.Error(err),
	)
}
