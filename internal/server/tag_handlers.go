package server

import "github.com/gofiber/fiber/v2"

// GetTags handles GET /api/tags
// @Summary List tags
// @Description Every tag in use, ordered by name
// @Tags tags
// @Produce json
// @Success 200 {array} models.Tag
// @Failure 401 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /tags [get]
func (s *Server) GetTags(c *fiber.Ctx) error {
	list, err := s.tagService.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(list)
}
