package middleware

import (
	"github.com/gofiber/fiber/v2"

	"hrportal/internal/database"
)

func AdminMiddleware(c *fiber.Ctx) error {
	acc := c.Locals("account").(database.Account)

	if acc.Role != database.RoleAdministrator {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Administrator role required",
		})
	}

	return c.Next()
}
