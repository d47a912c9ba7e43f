// Package webhooks receives Shopify webhook deliveries. Payloads are
// authenticated with the base64 HMAC header before any parsing.
package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"catalog-sync-backend/internal/config"
	"catalog-sync-backend/internal/database"
	"catalog-sync-backend/internal/logging"
	"catalog-sync-backend/internal/models"
	"catalog-sync-backend/internal/shop"

	"github.com/gofiber/fiber/v2"
)

const (
	hmacHeader   = "X-Shopify-Hmac-Sha256"
	domainHeader = "X-Shopify-Shop-Domain"
)

// VerifyPayload checks the base64 HMAC-SHA256 of the raw request body.
func VerifyPayload(body []byte, provided, apiSecret string) bool {
	if provided == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(apiSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(provided))
}

// UninstalledHandler handles app/uninstalled: the shop row and its logs
// are removed so a reinstall starts clean.
func UninstalledHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !VerifyPayload(c.Body(), c.Get(hmacHeader), cfg.ShopifyAPISecret) {
			return fiber.NewError(fiber.StatusUnauthorized, "HMAC verification failed")
		}

		shopDomain := c.Get(domainHeader)
		if shopDomain == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Shop domain header missing")
		}

		s, err := shop.ByDomain(shopDomain)
		if err != nil {
			// Unknown shop: acknowledge so Shopify stops retrying.
			return c.SendStatus(fiber.StatusOK)
		}

		if err := database.DB.Where("store = ?", shopDomain).Delete(&models.LogEntry{}).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete shop logs")
		}
		if err := database.DB.Delete(s).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not delete shop")
		}

		logging.L.Log("app_uninstalled", logging.LevelInfo, shopDomain, "", models.JSONMap{
			"message": "Shop data removed after uninstall.",
		})
		return c.SendStatus(fiber.StatusOK)
	}
}
