package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is an application error carrying the HTTP status it maps to.
// Message is safe to show to clients; Err is kept for logs only.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the same kind of application error, so that
// wrapped copies still match their sentinel with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap returns a copy of base carrying err. Sentinels are never mutated.
func Wrap(base *Error, err error) *Error {
	return New(base.Code, base.Message, err)
}

// Respond aborts the request with the status and message of err. Anything
// that is not an *Error is reported as a generic internal error.
func Respond(c *gin.Context, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Wrap(ErrInternalServer, err)
	}
	c.AbortWithStatusJSON(appErr.Code, gin.H{"error": appErr.Message})
}

var (
	ErrBadRequest      = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized    = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrForbidden       = New(http.StatusForbidden, "Forbidden", nil)
	ErrNotFound        = New(http.StatusNotFound, "Not found", nil)
	ErrTooManyRequests = New(http.StatusTooManyRequests, "Too many requests", nil)
	ErrInternalServer  = New(http.StatusInternalServerError, "Internal server error", nil)
)

// Webhook ingestion
var (
	ErrMissingSignature     = New(http.StatusForbidden, "Missing signature", nil)
	ErrInvalidSignature     = New(http.StatusForbidden, "Invalid signature", nil)
	ErrWebhookSecretMissing = New(http.StatusBadRequest, "Webhook secret not configured", nil)
	ErrEventExpired         = New(http.StatusBadRequest, "Event too old", nil)
	ErrInvalidPayload       = New(http.StatusBadRequest, "Invalid payload", nil)
	ErrIPNotAllowed         = New(http.StatusForbidden, "Access denied", nil)
)

// Authentication
var (
	ErrInvalidCredentials = New(http.StatusUnauthorized, "Invalid credentials", nil)
	ErrInvalidToken       = New(http.StatusUnauthorized, "Invalid or expired token", nil)
	ErrUserExists         = New(http.StatusBadRequest, "Username or email already in use", nil)
	ErrInvalidAdminKey    = New(http.StatusForbidden, "Invalid secret key", nil)
	ErrWeakPassword       = New(http.StatusBadRequest, "Password must be at least 8 characters and contain upper, lower, digit and special characters", nil)
)

// Checkout
var (
	ErrCheckoutFailed = New(http.StatusInternalServerError, "Failed to create checkout session", nil)
)
