package controllers

import (
	"context"
	"net/http"

	"checkout-service/apperrors"
	"checkout-service/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CheckoutSessionCreator interface {
	CreateSession(ctx context.Context, quantity int64, planType, origin string) (string, error)
}

type CheckoutController struct {
	checkout       CheckoutSessionCreator
	publishableKey string
	pricing        models.PricingConfig
	logger         *zap.Logger
}

func NewCheckoutController(checkout CheckoutSessionCreator, publishableKey string, pricing models.PricingConfig, logger *zap.Logger) *CheckoutController {
	return &CheckoutController{
		checkout:       checkout,
		publishableKey: publishableKey,
		pricing:        pricing,
		logger:         logger,
	}
}

func (cc *CheckoutController) GetStripeKey(c *gin.Context) {
	cc.logger.Info("Stripe publishable key requested", zap.String("client_ip", c.ClientIP()))
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"publishableKey": cc.publishableKey,
	})
}

func (cc *CheckoutController) GetPricingConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"pricing": cc.pricing,
	})
}

func (cc *CheckoutController) CreateCheckoutSession(c *gin.Context) {
	var req models.CheckoutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		cc.logger.Warn("Invalid checkout session request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "A quantidade deve ser um número inteiro entre 1 e 100 e o plano deve ser \"monthly\" ou \"yearly\""})
		return
	}

	url, err := cc.checkout.CreateSession(c.Request.Context(), req.Quantity, req.PlanType, requestOrigin(c))
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CheckoutSessionResponse{URL: url})
}

// requestOrigin prefers the Origin header and falls back to the request's own scheme and host.
func requestOrigin(c *gin.Context) string {
	if origin := c.GetHeader("Origin"); origin != "" {
		return origin
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}
