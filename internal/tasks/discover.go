// Package tasks implements the independently invocable pipeline tasks
// exposed by the catalog-tasks CLI.
package tasks

import (
	"context"
	"errors"

	"catalog-sync-backend/internal/catalog"
	"catalog-sync-backend/internal/config"
	"catalog-sync-backend/internal/logging"
	"catalog-sync-backend/internal/models"
	"catalog-sync-backend/internal/suppliers"
)

type DiscoverOptions struct {
	// MaxNewProducts caps inserts across all suppliers. 0 means no cap.
	MaxNewProducts int
}

type DiscoverSummary struct {
	NewProducts      int
	NewSupplierLinks int
	FailedSuppliers  int
}

// Discover pulls every active supplier feed, inserts unseen barcodes
// and attaches supplier links to known products. Link pruning is owned
// by the update_supplier_data task.
func Discover(ctx context.Context, cfg *config.Config, opts DiscoverOptions) (DiscoverSummary, error) {
	taskID := logging.L.TaskStart("discover_new_products")
	var summary DiscoverSummary

	for _, supplier := range suppliers.Active(cfg) {
		name := supplier.Name()

		if err := supplier.Load(ctx); err != nil {
			summary.FailedSuppliers++
			logging.L.Log("supplier_feed_load_failed", logging.LevelError, "", taskID, models.JSONMap{
				"supplier": name,
				"error":    err.Error(),
			})
			continue
		}

		var newBarcodes, newLinks int
		for _, barcode := range supplier.Barcodes() {
			if err := ctx.Err(); err != nil {
				return summary, err
			}

			fp, ok := supplier.ProductByBarcode(barcode)
			if !ok {
				continue
			}

			product, err := catalog.ByBarcode(barcode)
			switch {
			case errors.Is(err, catalog.ErrProductNotFound):
				if opts.MaxNewProducts > 0 && summary.NewProducts >= opts.MaxNewProducts {
					continue
				}
				if _, err := catalog.CreateFromFeed(name, fp); err != nil {
					logging.L.ProductError(barcode, taskID, err)
					continue
				}
				newBarcodes++
				summary.NewProducts++
			case err != nil:
				logging.L.ProductError(barcode, taskID, err)
			default:
				added, err := catalog.AttachSupplier(product, name, fp)
				if err != nil {
					logging.L.ProductError(barcode, taskID, err)
					continue
				}
				if added {
					newLinks++
					summary.NewSupplierLinks++
				}
			}
		}

		logging.L.Log("product_discovery", logging.LevelInfo, "", taskID, models.JSONMap{
			"supplier":           name,
			"new_barcodes":       newBarcodes,
			"new_supplier_links": newLinks,
		})
	}

	logging.L.Log("discover_new_products_summary", logging.LevelSuccess, "", taskID, models.JSONMap{
		"new_products":       summary.NewProducts,
		"new_supplier_links": summary.NewSupplierLinks,
		"failed_suppliers":   summary.FailedSuppliers,
	})
	return summary, nil
}
