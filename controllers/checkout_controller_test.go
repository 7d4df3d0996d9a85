package controllers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"checkout-service/apperrors"
	"checkout-service/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockCheckoutCreator struct{ mock.Mock }

func (m *MockCheckoutCreator) CreateSession(ctx context.Context, quantity int64, planType, origin string) (string, error) {
	args := m.Called(ctx, quantity, planType, origin)
	return args.String(0), args.Error(1)
}

func newCheckoutRouter(cc *CheckoutController) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/stripe-key", cc.GetStripeKey)
	router.GET("/pricing-config", cc.GetPricingConfig)
	router.POST("/create-checkout-session", cc.CreateCheckoutSession)
	return router
}

func TestGetStripeKeyAndPricing(t *testing.T) {
	cc := NewCheckoutController(new(MockCheckoutCreator), "pk_test_123", services.DefaultPricingConfig(), zap.NewNop())
	router := newCheckoutRouter(cc)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stripe-key", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"publishableKey":"pk_test_123"}`, w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pricing-config", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"pricing":{"monthly":14.9,"yearlyDiscount":2,"volumeDiscounts":{"tier1":{"min":5,"discount":0.05},"tier2":{"min":10,"discount":0.1}}}}`, w.Body.String())
}

func TestCreateCheckoutSessionController(t *testing.T) {
	post := func(router http.Handler, body string, header http.Header) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/create-checkout-session", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		for k, v := range header {
			req.Header[k] = v
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("Success - uses Origin header", func(t *testing.T) {
		creator := new(MockCheckoutCreator)
		creator.On("CreateSession", mock.Anything, int64(5), "monthly", "https://proxies.example.com").
			Return("https://checkout.stripe.com/c/pay/cs_1", nil).Once()
		router := newCheckoutRouter(NewCheckoutController(creator, "pk", services.DefaultPricingConfig(), zap.NewNop()))

		w := post(router, `{"quantity":5,"planType":"monthly"}`, http.Header{"Origin": {"https://proxies.example.com"}})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"url":"https://checkout.stripe.com/c/pay/cs_1"}`, w.Body.String())
		creator.AssertExpectations(t)
	})

	t.Run("Success - falls back to host", func(t *testing.T) {
		creator := new(MockCheckoutCreator)
		creator.On("CreateSession", mock.Anything, int64(1), "yearly", "http://example.com").Return("https://checkout", nil).Once()
		router := newCheckoutRouter(NewCheckoutController(creator, "pk", services.DefaultPricingConfig(), zap.NewNop()))

		w := post(router, `{"quantity":1,"planType":"yearly"}`, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		creator.AssertExpectations(t)
	})

	t.Run("Failure - invalid body - 400", func(t *testing.T) {
		for _, body := range []string{`{"quantity":0,"planType":"monthly"}`, `{"quantity":101,"planType":"monthly"}`, `{"quantity":3,"planType":"weekly"}`, `not json`} {
			creator := new(MockCheckoutCreator)
			router := newCheckoutRouter(NewCheckoutController(creator, "pk", services.DefaultPricingConfig(), zap.NewNop()))
			w := post(router, body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
			creator.AssertNotCalled(t, "CreateSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		}
	})

	t.Run("Failure - Stripe error - 500", func(t *testing.T) {
		creator := new(MockCheckoutCreator)
		creator.On("CreateSession", mock.Anything, int64(2), "monthly", mock.Anything).
			Return("", apperrors.Wrap(apperrors.ErrCheckoutFailed, errors.New("card_declined"))).Once()
		router := newCheckoutRouter(NewCheckoutController(creator, "pk", services.DefaultPricingConfig(), zap.NewNop()))

		w := post(router, `{"quantity":2,"planType":"monthly"}`, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"error":"Failed to create checkout session"}`, w.Body.String())
		assert.NotContains(t, w.Body.String(), "card_declined")
	})
}
