// Package middleware provides HTTP middleware: authentication, logging, tracing, metrics and limits.
package middleware

import (
	"context"
	"strings"

	"github.com/AlbertoOrlando/travel-journal-app/internal/models"

	"github.com/gofiber/fiber/v2"
)

// TokenVerifier resolves a bearer token to the id of the user it was issued for.
type TokenVerifier interface {
	Verify(token string) (uint, error)
}

// AuthRequired is a middleware that enforces authentication for protected routes.
// On success the user id is stored in c.Locals("userID") and in the request context.
func AuthRequired(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization header required"))
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid authorization header format"))
		}

		userID, err := verifier.Verify(parts[1])
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		c.Locals("userID", userID)
		ctx := context.WithValue(c.UserContext(), UserIDKey, userID)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// CurrentUserID returns the authenticated user id set by AuthRequired.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userID").(uint)
	return id, ok && id != 0
}
