package handlers

import (
	"github.com/gofiber/fiber/v2"

	"note-shelf/cmd/server/handlers/handlerutil"
)

// Me returns the identity resolved from the bearer token.
// @Summary Get current user
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} auth.Identity
// @Failure 401 {object} httperr.E
// @Router /me [get]
func Me(c *fiber.Ctx) error {
	id, err := handlerutil.Identity(c)
	if err != nil {
		return err
	}
	return c.JSON(id)
}
