package controller

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"terapia-chat-be/internal/dto"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAccessService struct {
	decision *dto.AccessDecision
}

func (s *stubAccessService) CanUserAccessDiagnostico(ctx context.Context, userId uuid.UUID, codigo string) (*dto.AccessDecision, error) {
	return s.decision, nil
}

func (s *stubAccessService) ResolveMaxSessions(ctx context.Context, codigo string) int {
	return 10
}

func validateApp(decision *dto.AccessDecision) *fiber.App {
	app := fiber.New()
	ctrl := NewAccessController(&stubAccessService{decision: decision})
	app.Get("/api/access/validate", func(c *fiber.Ctx) error {
		c.Locals("user_id", uuid.NewString())
		return ctrl.Validate(c)
	})
	return app
}

func TestValidateSetsRetryAfterFromDecision(t *testing.T) {
	app := validateApp(&dto.AccessDecision{
		CanAccess:  false,
		Reason:     "temporary error, please retry",
		Temporary:  true,
		RetryAfter: 17,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/access/validate?diagnosticoCodigo=ansiedade", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "17", resp.Header.Get("Retry-After"))
}

func TestValidateDefaultsRetryAfterWhenUnset(t *testing.T) {
	app := validateApp(&dto.AccessDecision{
		CanAccess: false,
		Reason:    "temporary error, please retry",
		Temporary: true,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/access/validate?diagnosticoCodigo=ansiedade", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "5", resp.Header.Get("Retry-After"))
}
