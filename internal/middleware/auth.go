package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal/internal/auth"
	"hrportal/internal/config"
	"hrportal/internal/database"
	"hrportal/internal/platform/account"
)

// AuthMiddleware validates the Bearer token and loads the account behind it.
// The account is re-read from the store on every request; there is no
// in-process caching, so administrative suspensions take effect immediately.
func AuthMiddleware(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	db := c.Locals("db").(*gorm.DB)

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Token required",
		})
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Token required",
		})
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := auth.VerifyToken([]byte(cfg.JWTSecret), token)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Invalid or expired token",
		})
	}

	accountService := account.NewService(db, account.DefaultPolicy())

	acc, err := accountService.GetByID(claims.AccountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
		})
	}

	// A token outlives a suspension; the status gate here closes that hole.
	if acc.Status != database.StatusActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Account is not active",
		})
	}

	c.Locals("claims", claims)
	c.Locals("account", *acc)

	return c.Next()
}
