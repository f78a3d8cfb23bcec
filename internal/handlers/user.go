package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"hrportal/internal/config"
	"hrportal/internal/database"
	"hrportal/internal/platform/storage"
)

func UpdateCurrentAccount(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	acc := c.Locals("account").(database.Account)

	var input database.Account
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid input"})
	}

	updateNullableString := func(target **string, value *string) {
		if value != nil {
			if *value != "" {
				*target = value
			} else {
				*target = nil
			}
		}
	}

	if input.FullName != "" {
		acc.FullName = input.FullName
	}
	updateNullableString(&acc.PhoneNumber, input.PhoneNumber)
	updateNullableString(&acc.JobTitle, input.JobTitle)

	result := db.Save(&acc)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(acc)
}

func UploadAvatar(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	db := c.Locals("db").(*gorm.DB)
	acc := c.Locals("account").(database.Account)

	file, err := c.FormFile("avatar")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing avatar file"})
	}

	storageService := storage.NewStorageService(cfg.Storage())

	if !storageService.IsFileExtensionAllowed(file.Filename) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "File type not allowed"})
	}

	key := fmt.Sprintf("avatar/%s", storageService.GenerateKeyName())
	if err := storageService.SaveFile(file, key, c); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	acc.Avatar = &key
	if err := db.Model(&acc).Update("avatar", key).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal server error"})
	}

	return c.JSON(acc)
}
