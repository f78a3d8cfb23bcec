package handlers

import (
	"errors"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal/internal/auth"
	"hrportal/internal/config"
	"hrportal/internal/database"
	"hrportal/internal/platform/account"
)

func newAccountService(c *fiber.Ctx) *account.AccountService {
	cfg := c.Locals("config").(*config.Config)
	db := c.Locals("db").(*gorm.DB)

	return account.NewService(db, account.Policy{
		MaxLoginAttempts: cfg.LockoutThreshold,
		LockDuration:     time.Duration(cfg.LockoutDurationMin) * time.Minute,
	})
}

// loginError maps the account service sentinels onto the HTTP surface. The
// pending/rejected/suspended outcomes are deliberately distinguishable; a
// wrong password and an unknown identifier are not.
func loginError(c *fiber.Ctx, accountService *account.AccountService, acc *database.Account, err error) error {
	switch {
	case errors.Is(err, account.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid credentials"})
	case errors.Is(err, account.ErrLocked):
		minutes := int(math.Ceil(accountService.LockRemaining(acc).Minutes()))
		return c.Status(fiber.StatusLocked).JSON(fiber.Map{
			"error":               "account_locked",
			"retry_after_minutes": minutes,
		})
	case errors.Is(err, account.ErrPending):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "account_pending",
			"message": "Account is awaiting approval",
		})
	case errors.Is(err, account.ErrRejected):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "account_rejected",
			"message": "Account registration was rejected",
		})
	case errors.Is(err, account.ErrSuspended):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "account_suspended",
			"message": "Account is suspended",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}
}

func Register(c *fiber.Ctx) error {
	type RegisterInput struct {
		Username    string  `json:"username" validate:"required,min=3"`
		Password    string  `json:"password" validate:"required,min=6"`
		Email       string  `json:"email" validate:"required,email"`
		FullName    string  `json:"full_name" validate:"required"`
		PhoneNumber *string `json:"phone_number" validate:"omitempty,min=6"`
	}

	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	accountService := newAccountService(c)

	acc, err := accountService.Register(input.Username, input.Password, input.Email, input.FullName, input.PhoneNumber)
	if err != nil {
		if errors.Is(err, account.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Username or email already in use"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(acc)
}

func Login(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)

	type LoginInput struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	accountService := newAccountService(c)

	acc, err := accountService.Authenticate(input.Username, input.Password)
	if err != nil {
		return loginError(c, accountService, acc, err)
	}

	expiry := time.Duration(cfg.TokenExpiryHours) * time.Hour
	token, err := auth.GenerateToken([]byte(cfg.JWTSecret), expiry, acc)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  acc,
	})
}

func GetCurrentAccount(c *fiber.Ctx) error {
	acc := c.Locals("account").(database.Account)

	return c.JSON(acc)
}

func ChangePassword(c *fiber.Ctx) error {
	acc := c.Locals("account").(database.Account)

	type ChangePasswordInput struct {
		CurrentPassword string `json:"current_password" validate:"required"`
		NewPassword     string `json:"new_password" validate:"required,min=6"`
	}

	var input ChangePasswordInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	accountService := newAccountService(c)

	// Re-verify before accepting the new password; holding a valid token is
	// not enough on its own.
	if verified, err := accountService.Authenticate(acc.Username, input.CurrentPassword); err != nil {
		if verified == nil {
			verified = &acc
		}
		return loginError(c, accountService, verified, err)
	}

	if err := accountService.UpdatePassword(&acc, input.NewPassword); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
