package handlers

import (
	"github.com/PavelDubrovin93/foodgram/domain"
	"github.com/gofiber/fiber/v2"
)

// currentUserID returns the authenticated user id, or 0 for anonymous
// requests that passed through the optional-auth middleware.
func currentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("user_id").(uint); ok {
		return id
	}
	return 0
}

func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id < 1 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return uint(id), nil
}
