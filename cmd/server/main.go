package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"hrportal/internal/config"
	"hrportal/internal/database"
	"hrportal/internal/handlers"
	"hrportal/internal/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}

	app := fiber.New()

	app.Use(compress.New())
	app.Use(helmet.New())
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(healthcheck.New())

	app.Use(func(c *fiber.Ctx) error {
		c.Locals("config", cfg)
		c.Locals("db", db)
		return c.Next()
	})

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.Register)
	auth.Post("/login", handlers.Login)
	auth.Get("/me", middleware.AuthMiddleware, handlers.GetCurrentAccount)
	auth.Post("/change-password", middleware.AuthMiddleware, handlers.ChangePassword)

	user := api.Group("/user", middleware.AuthMiddleware)
	user.Put("/me", handlers.UpdateCurrentAccount)
	user.Put("/me/avatar", handlers.UploadAvatar)

	admin := api.Group("/admin", middleware.AuthMiddleware, middleware.AdminMiddleware)
	admin.Get("/accounts", handlers.GetAllAccounts)
	admin.Get("/accounts/pending", handlers.GetPendingAccounts)
	admin.Post("/accounts", handlers.CreateAccount)
	admin.Post("/accounts/:account_id/approve", handlers.ApproveAccount)
	admin.Post("/accounts/:account_id/reject", handlers.RejectAccount)
	admin.Post("/accounts/:account_id/suspend", handlers.SuspendAccount)
	admin.Post("/accounts/:account_id/reinstate", handlers.ReinstateAccount)
	admin.Put("/accounts/:account_id/role", handlers.SetAccountRole)
	admin.Post("/accounts/:account_id/reset-password", handlers.ResetAccountPassword)
	admin.Delete("/accounts/:account_id", handlers.DeleteAccount)

	app.Use(func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	log.Fatal(app.Listen(fmt.Sprintf(":%d", cfg.ServerPort)))
}
