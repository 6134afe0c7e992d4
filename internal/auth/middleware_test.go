package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protectedApp(m *JWTManager) *fiber.App {
	app := fiber.New()
	app.Get("/me", Middleware(m), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"userId":   c.Locals("userID"),
			"username": c.Locals("username"),
		})
	})
	return app
}

func TestMiddlewarePassesValidToken(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	token, err := m.GenerateAccessToken(42, "alice")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := protectedApp(m).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestMiddlewareRejectsMissingAndMalformedHeaders(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	app := protectedApp(m)

	for _, header := range []string{"", "Bearer", "Token abc", "Bearer bad.token"} {
		req := httptest.NewRequest("GET", "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, "header %q", header)
	}
}

func TestMiddlewareRejectsExpiredToken(t *testing.T) {
	expired := NewJWTManager("test-secret", -time.Minute)
	token, err := expired.GenerateAccessToken(1, "alice")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := protectedApp(NewJWTManager("test-secret", time.Hour)).Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
