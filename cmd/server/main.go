package main

import (
	"log"

	"catalog-sync-backend/internal/auth"
	"catalog-sync-backend/internal/config"
	"catalog-sync-backend/internal/database"
	"catalog-sync-backend/internal/logging"
	"catalog-sync-backend/internal/settings"
	"catalog-sync-backend/internal/shopify"
	"catalog-sync-backend/internal/webhooks"

	"github.com/gofiber/fiber/v2"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)
	if err := logging.Init(cfg); err != nil {
		log.Fatal("Failed to initialize logging: ", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Unexpected server error",
			})
		},
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	exchanger := shopify.NewTokenExchanger(cfg.ShopifyAPIKey, cfg.ShopifyAPISecret)

	// OAuth install flow
	app.Get("/auth/shopify/install", auth.InstallHandler(cfg))
	app.Get("/auth/shopify/callback", auth.CallbackHandler(cfg, exchanger))

	// Webhooks authenticate with payload HMAC, not session tokens
	app.Post("/webhooks/shopify/uninstalled", webhooks.UninstalledHandler(cfg))

	// Embedded admin API
	api := app.Group("/api")
	api.Use(auth.SessionMiddleware(cfg))
	api.Get("/settings", settings.GetSettingsHandler())
	api.Put("/settings", settings.UpdateSettingsHandler())

	log.Println("Server listening on port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
