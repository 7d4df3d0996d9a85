package middleware

import (
	"checkout-service/apperrors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StripeWebhookIPs are the source addresses Stripe publishes for webhook delivery.
var StripeWebhookIPs = []string{
	"3.18.12.63",
	"3.130.192.231",
	"13.235.14.237",
	"13.235.122.149",
	"18.211.135.69",
	"35.154.171.200",
	"52.15.183.38",
	"54.88.130.119",
	"54.88.130.237",
	"54.187.174.169",
	"54.187.205.235",
	"54.187.216.72",
	"54.241.31.99",
	"54.241.31.102",
	"54.241.34.107",
}

// IPAllowlist rejects requests whose client IP is not in ips. Client IP
// resolution follows the engine's trusted proxy settings.
func IPAllowlist(ips []string, logger *zap.Logger) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(ips))
	for _, ip := range ips {
		allowed[ip] = struct{}{}
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if _, ok := allowed[ip]; !ok {
			logger.Warn("Webhook from unauthorized IP", zap.String("client_ip", ip))
			apperrors.Respond(c, apperrors.ErrIPNotAllowed)
			return
		}
		c.Next()
	}
}
