package controllers

import (
	"io"
	"net/http"
	"runtime/debug"

	"checkout-service/apperrors"
	"checkout-service/metrics"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxWebhookBodyBytes = 1 << 20

// WebhookController ingests Stripe deliveries: verify, replay check,
// normalize, relay, acknowledge.
type WebhookController struct {
	verifier   services.WebhookVerifier
	guard      services.ReplayChecker
	normalizer services.Normalizer
	relay      services.Relayer
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

func NewWebhookController(
	verifier services.WebhookVerifier,
	guard services.ReplayChecker,
	normalizer services.Normalizer,
	relay services.Relayer,
	m *metrics.Metrics,
	logger *zap.Logger,
) *WebhookController {
	return &WebhookController{
		verifier:   verifier,
		guard:      guard,
		normalizer: normalizer,
		relay:      relay,
		metrics:    m,
		logger:     logger,
	}
}

func acknowledge(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// StripeWebhook handles POST /api/stripe/webhooks/incoming.
func (wc *WebhookController) StripeWebhook(c *gin.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			wc.logger.Error("Panic while processing webhook",
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
			wc.metrics.ObserveWebhook("", metrics.OutcomeError)
			apperrors.Respond(c, apperrors.ErrInternalServer)
		}
	}()

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		wc.logger.Warn("Failed to read webhook body", zap.Error(err))
		wc.metrics.ObserveWebhook("", metrics.OutcomeRejected)
		apperrors.Respond(c, apperrors.Wrap(apperrors.ErrInvalidPayload, err))
		return
	}

	event, err := wc.verifier.VerifyWebhook(body, c.GetHeader("Stripe-Signature"))
	if err != nil {
		wc.metrics.ObserveWebhook("", metrics.OutcomeRejected)
		apperrors.Respond(c, err)
		return
	}

	eventType := string(event.Type)
	log := wc.logger.With(zap.String("event_id", event.ID), zap.String("event_type", eventType))

	ctx := c.Request.Context()
	verdict, err := wc.guard.Check(ctx, event)
	if err != nil {
		log.Error("Replay check failed", zap.Error(err))
		wc.metrics.ObserveWebhook(eventType, metrics.OutcomeError)
		apperrors.Respond(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	switch verdict {
	case services.ReplayDuplicate:
		wc.metrics.ObserveWebhook(eventType, metrics.OutcomeDuplicate)
		acknowledge(c)
		return
	case services.ReplayExpired:
		wc.metrics.ObserveWebhook(eventType, metrics.OutcomeExpired)
		apperrors.Respond(c, apperrors.ErrEventExpired)
		return
	}

	payload, ok := wc.normalizer.Normalize(ctx, event)
	if !ok {
		wc.metrics.ObserveWebhook(eventType, metrics.OutcomeIgnored)
		acknowledge(c)
		return
	}

	outcome := metrics.OutcomeRelayed
	if !wc.relay.Relay(ctx, payload.EventType(), payload) {
		log.Warn("Event acknowledged without relay delivery", zap.String("relay_event_type", payload.EventType()))
		outcome = metrics.OutcomeRelayFailed
	}
	wc.metrics.ObserveWebhook(eventType, outcome)
	acknowledge(c)
}
