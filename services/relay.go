package services

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"checkout-service/metrics"
	"checkout-service/models"

	"go.uber.org/zap"
)

const (
	HeaderWebhookSignature = "X-Webhook-Signature"
	HeaderWebhookTimestamp = "X-Webhook-Timestamp"
)

// Relayer forwards a normalized payload to the external consumer. It reports
// delivery and never fails the caller.
type Relayer interface {
	Relay(ctx context.Context, eventType string, payload models.NormalizedPayload) bool
}

type RelayConfig struct {
	URL        string
	Secret     string
	Production bool
	Timeout    time.Duration
	MaxBytes   int64
}

// WebhookRelay makes one signed POST per payload, with no retries.
type WebhookRelay struct {
	cfg        RelayConfig
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

func NewWebhookRelay(cfg RelayConfig, m *metrics.Metrics, logger *zap.Logger) *WebhookRelay {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 1 << 20
	}
	return &WebhookRelay{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			// a redirect is reported as a failed delivery, the signed body is never re-sent
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// SignPayload returns the hex HMAC-SHA256 of body keyed by secret.
func SignPayload(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (r *WebhookRelay) Relay(ctx context.Context, eventType string, payload models.NormalizedPayload) bool {
	if r.cfg.URL == "" {
		r.logger.Warn("External webhook URL not configured, relay skipped", zap.String("event_type", eventType))
		return false
	}

	target, err := url.Parse(r.cfg.URL)
	if err != nil || target.Host == "" {
		r.logger.Error("External webhook URL is invalid", zap.String("event_type", eventType), zap.Error(err))
		return false
	}
	if r.cfg.Production && target.Scheme != "https" {
		r.logger.Error("External webhook URL must use HTTPS in production", zap.String("event_type", eventType))
		return false
	}

	body, err := encodeRedacted(payload)
	if err != nil {
		r.logger.Error("Failed to encode relay payload", zap.String("event_type", eventType), zap.Error(err))
		return false
	}
	if int64(len(body)) > r.cfg.MaxBytes {
		r.logger.Error("Relay payload too large",
			zap.String("event_type", eventType),
			zap.Int("size", len(body)),
			zap.Int64("max", r.cfg.MaxBytes),
		)
		return false
	}

	start := time.Now()
	delivered := r.send(ctx, target.String(), eventType, body)
	r.metrics.ObserveRelay(eventType, delivered, time.Since(start))
	return delivered
}

func (r *WebhookRelay) send(ctx context.Context, target, eventType string, body []byte) bool {
	// the inbound request may finish before the relay does
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		r.logger.Error("Failed to create relay request", zap.String("event_type", eventType), zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderWebhookSignature, SignPayload(body, r.cfg.Secret))
	req.Header.Set(HeaderWebhookTimestamp, r.now().UTC().Format(models.TimeLayout))

	resp, err := r.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			r.logger.Error("Relay timed out", zap.String("event_type", eventType), zap.Duration("timeout", r.cfg.Timeout))
		} else {
			r.logger.Error("Relay request failed", zap.String("event_type", eventType), zap.Error(err))
		}
		return false
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, r.cfg.MaxBytes))
	if err != nil {
		r.logger.Warn("Failed to read relay response", zap.String("event_type", eventType), zap.Error(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		r.logger.Error("Relay rejected by external endpoint",
			zap.String("event_type", eventType),
			zap.Int("status", resp.StatusCode),
			zap.Int("response_size", len(respBytes)),
		)
		return false
	}

	r.logger.Info("Event relayed", zap.String("event_type", eventType), zap.Int("status", resp.StatusCode))
	return true
}

// encodeRedacted flattens typed values to JSON maps before redacting, so
// structs and typed maps nested in the payload are masked too.
func encodeRedacted(payload models.NormalizedPayload) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	return json.Marshal(RedactSensitive(generic))
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
