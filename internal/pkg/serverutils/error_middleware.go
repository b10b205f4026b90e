package serverutils

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// TransientError marks infrastructure failures (connection, auth token,
// circuit breaker) that the caller should retry rather than treat as a denial.
type TransientError struct {
	Err        error
	RetryAfter int // seconds
}

func (e *TransientError) Error() string {
	return e.Err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

func NewTransientError(err error) *TransientError {
	return &TransientError{Err: err, RetryAfter: 5}
}

// IsTransient classifies an error as a temporary infrastructure failure.
// The substrings cover the failure modes seen from Supabase/Postgres:
// dropped connections, expired JWTs and tripped circuit breakers.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"jwt expired",
		"circuit breaker",
		"too many connections",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// ErrorHandlerMiddleware converts errors bubbling out of handlers into JSON
// envelopes. Transient infrastructure errors become 503 with a retry hint.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var te *TransientError
		if errors.As(err, &te) || IsTransient(err) {
			retryAfter := 5
			if te != nil {
				retryAfter = te.RetryAfter
			}
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"code":       fiber.StatusServiceUnavailable,
				"message":    "temporarily unavailable, please retry",
				"retryAfter": retryAfter,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(fiber.StatusInternalServerError, err.Error()))
	}
}
