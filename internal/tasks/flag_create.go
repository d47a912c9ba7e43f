package tasks

import (
	"time"

	"catalog-sync-backend/internal/catalog"
	"catalog-sync-backend/internal/logging"
	"catalog-sync-backend/internal/models"
	"catalog-sync-backend/internal/shop"
)

type FlagSummary struct {
	Flagged int
	Skipped int
}

// FlagForCreate walks every ready shop and flags its eligible, fully
// enriched products as create_pending. Products with no in-stock supplier
// under the shop's exclusion rules are skipped.
func FlagForCreate() (FlagSummary, error) {
	taskID := logging.L.TaskStart("flag_products_to_create")
	start := time.Now()

	shops, err := shop.ReadyShops()
	if err != nil {
		return FlagSummary{}, err
	}

	var summary FlagSummary
	for i := range shops {
		s := shops[i]
		products, candidates, err := shop.EligibleProducts(&s)
		if err != nil {
			logging.L.Log("eligible_products_failed", logging.LevelError, s.Domain, taskID, models.JSONMap{
				"error": err.Error(),
			})
			continue
		}

		flagged := 0
		for j := range products {
			p := products[j]
			if catalog.BestSupplier(&p, &s) == nil {
				summary.Skipped++
				continue
			}
			if err := catalog.FlagForShop(&p, &s, taskID); err != nil {
				logging.L.ProductError(p.Barcode, taskID, err)
				continue
			}
			flagged++
		}
		summary.Flagged += flagged

		logging.L.Log("shop_products_flagged", logging.LevelInfo, s.Domain, taskID, models.JSONMap{
			"candidates": candidates,
			"eligible":   len(products),
			"flagged":    flagged,
		})
	}

	logging.L.TaskEnd(taskID, "flag_products_to_create", summary.Flagged, 0, time.Since(start), 0)
	return summary, nil
}
