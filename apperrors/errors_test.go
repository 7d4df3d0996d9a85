package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsSentinelIdentity(t *testing.T) {
	cause := errors.New("stripe: no signatures found")
	err := fmt.Errorf("verify: %w", Wrap(ErrInvalidSignature, cause))

	assert.True(t, errors.Is(err, ErrInvalidSignature))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrMissingSignature))
	assert.Nil(t, ErrInvalidSignature.Err)
}

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"app error", Wrap(ErrMissingSignature, nil), http.StatusForbidden, `{"error":"Missing signature"}`},
		{"wrapped app error", fmt.Errorf("ctx: %w", ErrEventExpired), http.StatusBadRequest, `{"error":"Event too old"}`},
		{"plain error", errors.New("redis: connection refused"), http.StatusInternalServerError, `{"error":"Internal server error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			Respond(c, tt.err)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.True(t, c.IsAborted())
		})
	}
}
