package server

import (
	"errors"
	"log/slog"

	"github.com/AlbertoOrlando/travel-journal-app/internal/middleware"
	"github.com/AlbertoOrlando/travel-journal-app/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid ID"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// currentUser returns the caller set by AuthRequired.
func currentUser(c *fiber.Ctx) uint {
	id, _ := middleware.CurrentUserID(c)
	return id
}

// respondError maps err to its status. Internal causes are logged here and
// never reach the client.
func respondError(c *fiber.Ctx, err error) error {
	appErr := models.AsAppError(err)
	if appErr.Code == models.CodeInternal {
		attrs := []any{slog.String("path", c.Path())}
		if appErr.Err != nil {
			attrs = append(attrs, slog.String("error", appErr.Err.Error()))
		}
		middleware.Logger.ErrorContext(c.UserContext(), "request failed with internal error", attrs...)
	}
	return models.RespondWithError(c, models.StatusFor(appErr), appErr)
}
