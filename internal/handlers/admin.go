package handlers

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"hrportal/internal/config"
	"hrportal/internal/database"
	"hrportal/internal/mail"
	"hrportal/internal/platform/account"
	"hrportal/pkg/utils"
)

func accountFromParam(c *fiber.Ctx, accountService *account.AccountService) (*database.Account, error) {
	accountID, err := uuid.Parse(c.Params("account_id"))
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid account ID"})
	}

	acc, err := accountService.GetByID(accountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Account not found"})
		}
		return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return acc, nil
}

func notifyAccount(cfg *config.Config, acc *database.Account, subject, template string, vars map[string]any) {
	if cfg.MailgunDomain == "" {
		return
	}

	message := mail.Email{
		Subject:      subject,
		From:         fmt.Sprintf("HR Portal <no-reply@%s>", cfg.MailgunDomain),
		To:           []string{acc.Email},
		Template:     template,
		TemplateVars: vars,
	}

	mailer := mail.NewMailer(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunAPIBase)
	if err := mailer.SendTemplatedMail(&message); err != nil {
		log.Printf("Failed to send email notification: %v\n", err)
	}
}

func GetAllAccounts(c *fiber.Ctx) error {
	accountService := newAccountService(c)

	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)

	accounts, err := accountService.List(limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(accounts)
}

func GetPendingAccounts(c *fiber.Ctx) error {
	accountService := newAccountService(c)

	accounts, err := accountService.ListPending()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(accounts)
}

func CreateAccount(c *fiber.Ctx) error {
	type CreateAccountInput struct {
		Username string `json:"username" validate:"required,min=3"`
		Password string `json:"password" validate:"omitempty,min=6"`
		Email    string `json:"email" validate:"required,email"`
		FullName string `json:"full_name" validate:"required"`
		Role     string `json:"role" validate:"omitempty,oneof=administrator manager employee"`
		Pending  bool   `json:"pending"`
	}

	var input CreateAccountInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if input.Password == "" {
		input.Password = utils.GenerateRandomString(12)
	}
	if input.Role == "" {
		input.Role = database.RoleEmployee
	}

	accountService := newAccountService(c)

	acc, err := accountService.Create(input.Username, input.Password, input.Email, input.FullName, input.Role, input.Pending)
	if err != nil {
		if errors.Is(err, account.ErrDuplicate) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Username or email already in use"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(acc)
}

func ApproveAccount(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	accountService := newAccountService(c)

	acc, err := accountFromParam(c, accountService)
	if acc == nil {
		return err
	}

	if err := accountService.Approve(acc); err != nil {
		if errors.Is(err, account.ErrInvalidTransition) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Account is not pending"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	notifyAccount(cfg, acc, "HR Portal - Account approved", "account-approved", map[string]any{
		"fullName": acc.FullName,
		"username": acc.Username,
	})

	return c.JSON(acc)
}

func RejectAccount(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	accountService := newAccountService(c)

	type RejectInput struct {
		Reason *string `json:"reason"`
	}

	var input RejectInput
	if err := c.BodyParser(&input); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	acc, err := accountFromParam(c, accountService)
	if acc == nil {
		return err
	}

	if err := accountService.Reject(acc, input.Reason); err != nil {
		if errors.Is(err, account.ErrInvalidTransition) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Account is not pending"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	notifyAccount(cfg, acc, "HR Portal - Account rejected", "account-rejected", map[string]any{
		"fullName": acc.FullName,
	})

	return c.JSON(acc)
}

func SuspendAccount(c *fiber.Ctx) error {
	accountService := newAccountService(c)

	acc, err := accountFromParam(c, accountService)
	if acc == nil {
		return err
	}

	if err := accountService.Suspend(acc); err != nil {
		if errors.Is(err, account.ErrInvalidTransition) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Account is not active"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(acc)
}

func ReinstateAccount(c *fiber.Ctx) error {
	accountService := newAccountService(c)

	acc, err := accountFromParam(c, accountService)
	if acc == nil {
		return err
	}

	if err := accountService.Reinstate(acc); err != nil {
		if errors.Is(err, account.ErrInvalidTransition) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Account is not suspended"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(acc)
}

func SetAccountRole(c *fiber.Ctx) error {
	accountService := newAccountService(c)

	type RoleInput struct {
		Role string `json:"role" validate:"required,oneof=administrator manager employee"`
	}

	var input RoleInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	acc, err := accountFromParam(c, accountService)
	if acc == nil {
		return err
	}

	if err := accountService.SetRole(acc, input.Role); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(acc)
}

// ResetAccountPassword sets a caller-provided or generated password and
// forces a change on next use. The generated password appears once in the
// response and is never logged.
func ResetAccountPassword(c *fiber.Ctx) error {
	accountService := newAccountService(c)

	type ResetInput struct {
		Password string `json:"password" validate:"omitempty,min=6"`
	}

	var input ResetInput
	if err := c.BodyParser(&input); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	err := config.Validate.Struct(input)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	if input.Password == "" {
		input.Password = utils.GenerateRandomString(12)
	}

	acc, err := accountFromParam(c, accountService)
	if acc == nil {
		return err
	}

	if err := accountService.ResetPassword(acc, input.Password); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(fiber.Map{
		"id":       acc.ID,
		"password": input.Password,
	})
}

func DeleteAccount(c *fiber.Ctx) error {
	actor := c.Locals("account").(database.Account)
	accountService := newAccountService(c)

	accountID, err := uuid.Parse(c.Params("account_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid account ID"})
	}

	if err := accountService.Delete(actor.ID, accountID); err != nil {
		switch {
		case errors.Is(err, account.ErrSelfDeletion):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Cannot delete own account"})
		case errors.Is(err, account.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Account not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
		}
	}

	return c.SendStatus(fiber.StatusNoContent)
}
