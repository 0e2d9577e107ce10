package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AlbertoOrlando/travel-journal-app/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type verifierFunc func(string) (uint, error)

func (f verifierFunc) Verify(token string) (uint, error) { return f(token) }

func TestAuthRequired(t *testing.T) {
	verifier := verifierFunc(func(token string) (uint, error) {
		if token == "good-token" {
			return 123, nil
		}
		return 0, models.NewUnauthorizedError("Invalid or expired token")
	})

	app := fiber.New()
	app.Get("/test", AuthRequired(verifier), func(c *fiber.Ctx) error {
		fromCtx, _ := c.UserContext().Value(UserIDKey).(uint)
		return c.JSON(fiber.Map{"userID": c.Locals("userID"), "ctxUserID": fromCtx})
	})

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"Happy Path", "Bearer good-token", http.StatusOK},
		{"Lowercase scheme", "bearer good-token", http.StatusOK},
		{"Missing Header", "", http.StatusUnauthorized},
		{"Invalid Format", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"Missing Token", "Bearer ", http.StatusUnauthorized},
		{"Rejected Token", "Bearer expired-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, float64(123), body["userID"])
				assert.Equal(t, float64(123), body["ctxUserID"])
			} else {
				assert.Equal(t, models.CodeUnauthorized, body["code"])
			}
		})
	}
}

func TestCurrentUserID(t *testing.T) {
	app := fiber.New()
	app.Get("/anon", func(c *fiber.Ctx) error {
		_, ok := CurrentUserID(c)
		return c.JSON(fiber.Map{"ok": ok})
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/anon", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	var body map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body["ok"])
}
