// Package settings exposes the merchant-facing shop settings API used by
// the embedded admin UI.
package settings

import (
	"catalog-sync-backend/internal/auth"
	"catalog-sync-backend/internal/models"
	"catalog-sync-backend/internal/shop"

	"github.com/gofiber/fiber/v2"
)

type UpdateSettingsRequest struct {
	ExcludedSuppliers []string `json:"excluded_suppliers"`
	ExcludedBrands    []string `json:"excluded_brands"`
	ProfitMargin      float64  `json:"profit_margin"`
	Rounding          float64  `json:"rounding"`
}

func shopFromLocals(c *fiber.Ctx) (*models.Shop, error) {
	domain, ok := c.Locals(auth.CtxShopDomainKey).(string)
	if !ok || domain == "" {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Shop domain missing from session")
	}
	s, err := shop.ByDomain(domain)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Shop not found")
	}
	return s, nil
}

func GetSettingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := shopFromLocals(c)
		if err != nil {
			return err
		}
		return c.JSON(shop.CurrentSettings(s))
	}
}

func UpdateSettingsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := shopFromLocals(c)
		if err != nil {
			return err
		}

		var body UpdateSettingsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.ProfitMargin < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "profit_margin must be at least 1")
		}
		if body.Rounding < 0 || body.Rounding >= 1 {
			return fiber.NewError(fiber.StatusBadRequest, "rounding must be in [0, 1)")
		}

		if err := shop.UpdateSettings(s, shop.Settings{
			ExcludedSuppliers: body.ExcludedSuppliers,
			ExcludedBrands:    body.ExcludedBrands,
			ProfitMargin:      body.ProfitMargin,
			Rounding:          body.Rounding,
		}); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save settings")
		}

		return c.JSON(shop.CurrentSettings(s))
	}
}
