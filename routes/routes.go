package routes

import (
	"net/http"

	"checkout-service/controllers"
	"checkout-service/metrics"
	"checkout-service/middleware"
	"checkout-service/models"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	apiRateLimitMessage  = "Muitas requisições, tente novamente mais tarde."
	authRateLimitMessage = "Muitas tentativas de login. Tente novamente mais tarde."
)

// Deps groups everything the router needs.
type Deps struct {
	Webhook  *controllers.WebhookController
	Checkout *controllers.CheckoutController
	Auth     *controllers.AuthController
	Pages    *controllers.PageController

	Tokens      middleware.TokenValidator
	APILimiter  *middleware.RateLimiter
	AuthLimiter *middleware.RateLimiter
	Metrics     *metrics.Metrics

	// RestrictWebhookIPs enables the Stripe source IP allowlist.
	RestrictWebhookIPs bool
	// AllowAdminCreation exposes POST /api/auth/create-admin.
	AllowAdminCreation bool
}

func RegisterRoutes(r *gin.Engine, d Deps, logger *zap.Logger) {
	apiLimit := middleware.RateLimit(d.APILimiter, apiRateLimitMessage, logger)
	authLimit := middleware.RateLimit(d.AuthLimiter, authRateLimitMessage, logger)
	requireAuth := middleware.RequireAuth(d.Tokens, services.TokenTypeAccess, logger)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "checkout-service"})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	webhook := []gin.HandlerFunc{apiLimit}
	if d.RestrictWebhookIPs {
		webhook = append(webhook, middleware.IPAllowlist(middleware.StripeWebhookIPs, logger))
	}
	webhook = append(webhook, d.Webhook.StripeWebhook)
	r.POST("/api/stripe/webhooks/incoming", webhook...)
	r.POST("/webhook", webhook...)

	r.GET("/stripe-key", apiLimit, d.Checkout.GetStripeKey)
	r.GET("/pricing-config", d.Checkout.GetPricingConfig)
	r.POST("/create-checkout-session", apiLimit, d.Checkout.CreateCheckoutSession)
	r.POST("/login", authLimit, d.Auth.Login)

	api := r.Group("/api", apiLimit)
	{
		api.GET("/stripe/public-key", d.Checkout.GetStripeKey)
		api.GET("/pricing-config", d.Checkout.GetPricingConfig)
		api.POST("/create-checkout-session", d.Checkout.CreateCheckoutSession)

		auth := api.Group("/auth")
		auth.POST("/login", authLimit, d.Auth.Login)
		auth.POST("/refresh-token", d.Auth.RefreshToken)
		auth.GET("/status", requireAuth, d.Auth.Status)
		if d.AllowAdminCreation {
			auth.POST("/create-admin", authLimit, d.Auth.CreateAdmin)
		}

		api.GET("/admin/dashboard", requireAuth, middleware.RequireRole(models.RoleAdmin), d.Auth.Dashboard)
	}

	r.GET("/", d.Pages.Index)
	r.GET("/sucesso", d.Pages.Success)
	r.GET("/sucesso.html", d.Pages.Success)
	r.NoRoute(d.Pages.NotFound)
}
