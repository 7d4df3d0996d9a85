package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"checkout-service/config"
	"checkout-service/controllers"
	"checkout-service/database"
	"checkout-service/logger"
	"checkout-service/metrics"
	"checkout-service/middleware"
	"checkout-service/repository"
	"checkout-service/routes"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Environment, cfg.LogFile)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	if cfg.RelaySecretDefaulted {
		zapLogger.Warn("EXTERNAL_WEBHOOK_SECRET not set, relay calls are signed with the default secret")
	}
	if cfg.StripeWebhookSecret == "" {
		zapLogger.Warn("STRIPE_WEBHOOK_SECRET not set, webhook deliveries will be rejected")
	}
	if cfg.ExternalWebhookURL == "" {
		zapLogger.Warn("EXTERNAL_WEBHOOK_URL not set, normalized events will not be relayed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var replayStore services.ReplayStore
	if cfg.RedisURL != "" {
		client, err := database.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer client.Close() //nolint:errcheck
		replayStore = database.NewReplayRepository(client, cfg.ReplayTTL)
		zapLogger.Info("Using Redis replay store", zap.Duration("ttl", cfg.ReplayTTL))
	} else {
		replayStore = services.NewMemoryReplayStore(cfg.ReplayCapacity)
		zapLogger.Info("Using in-memory replay store", zap.Int("capacity", cfg.ReplayCapacity))
	}

	userRepo := repository.NewUserRepository(cfg.UsersFile)
	if err := userRepo.Initialize(); err != nil {
		zapLogger.Fatal("Failed to initialize users file", zap.String("path", cfg.UsersFile), zap.Error(err))
	}

	m := metrics.New()

	// DI chain
	stripeService := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret, zapLogger)
	guard := services.NewReplayGuard(replayStore, cfg.MaxEventAge, zapLogger)
	normalizer := services.NewEventNormalizer(stripeService, cfg.Environment, zapLogger)
	relay := services.NewWebhookRelay(services.RelayConfig{
		URL:        cfg.ExternalWebhookURL,
		Secret:     cfg.ExternalWebhookSecret,
		Production: cfg.IsProduction(),
		Timeout:    cfg.RelayTimeout,
		MaxBytes:   cfg.RelayMaxBytes,
	}, m, zapLogger)
	checkoutService := services.NewCheckoutService(stripeService, zapLogger)
	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTExpiresIn, cfg.JWTRefreshExpiresIn)
	authService := services.NewAuthService(userRepo, tokenService, cfg.AdminSecretKey, zapLogger)

	apiLimiter := middleware.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	apiLimiter.StartCleanup(ctx.Done())
	authLimiter := middleware.NewRateLimiter(5, 15*time.Minute)
	authLimiter.StartCleanup(ctx.Done())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(zapLogger),
		middleware.RequestLogger(zapLogger),
		middleware.Metrics(m),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.CORSOrigin),
	)

	routes.RegisterRoutes(r, routes.Deps{
		Webhook:            controllers.NewWebhookController(stripeService, guard, normalizer, relay, m, zapLogger),
		Checkout:           controllers.NewCheckoutController(checkoutService, cfg.StripePublishableKey, services.DefaultPricingConfig(), zapLogger),
		Auth:               controllers.NewAuthController(authService, zapLogger),
		Pages:              controllers.NewPageController(cfg.StaticDir, zapLogger),
		Tokens:             tokenService,
		APILimiter:         apiLimiter,
		AuthLimiter:        authLimiter,
		Metrics:            m,
		RestrictWebhookIPs: cfg.IsProduction(),
		AllowAdminCreation: !cfg.IsProduction(),
	}, zapLogger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	zapLogger.Info("Checkout service started",
		zap.String("port", cfg.Port),
		zap.String("environment", cfg.Environment),
		zap.Bool("relay_configured", cfg.ExternalWebhookURL != ""),
	)
	<-ctx.Done()
	zapLogger.Info("Shutting down checkout service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	zapLogger.Info("Server exited cleanly")
}
