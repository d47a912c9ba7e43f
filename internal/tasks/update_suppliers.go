package tasks

import (
	"context"
	"time"

	"catalog-sync-backend/internal/catalog"
	"catalog-sync-backend/internal/config"
	"catalog-sync-backend/internal/logging"
	"catalog-sync-backend/internal/models"
	"catalog-sync-backend/internal/suppliers"
)

type UpdateSuppliersOptions struct {
	Limit  int
	DryRun bool
}

type UpdateSuppliersSummary struct {
	Refreshed int
	Pruned    int
	Unchanged int
	Reflagged int64
}

// UpdateSuppliers reconciles stored supplier links against the live
// feeds. Links for barcodes missing from a feed are pruned; price or
// stock changes are saved and the product's live listings are reflagged
// update_pending.
func UpdateSuppliers(ctx context.Context, cfg *config.Config, opts UpdateSuppliersOptions) (UpdateSuppliersSummary, error) {
	taskID := logging.L.TaskStart("update_supplier_data")
	start := time.Now()

	var summary UpdateSuppliersSummary
	for _, supplier := range suppliers.Active(cfg) {
		if err := supplier.Load(ctx); err != nil {
			logging.L.Log("supplier_feed_load_failed", logging.LevelError, "", taskID, models.JSONMap{
				"supplier": supplier.Name(),
				"error":    err.Error(),
			})
			continue
		}

		products, err := catalog.BySupplier(supplier.Name(), opts.Limit)
		if err != nil {
			return summary, err
		}

		for i := range products {
			p := products[i]
			fp, inFeed := supplier.ProductByBarcode(p.Barcode)

			if !inFeed {
				if opts.DryRun {
					logging.L.Log("supplier_prune_dry_run", logging.LevelInfo, "", taskID, models.JSONMap{
						"supplier": supplier.Name(), "barcode": p.Barcode,
					})
					continue
				}
				pruned, err := catalog.PruneSupplier(&p, supplier.Name())
				if err != nil {
					logging.L.ProductError(p.Barcode, taskID, err)
					continue
				}
				if pruned {
					summary.Pruned++
					n, err := catalog.ReflagLiveListings(&p)
					if err != nil {
						logging.L.ProductError(p.Barcode, taskID, err)
						continue
					}
					summary.Reflagged += n
				}
				continue
			}

			if opts.DryRun {
				continue
			}

			changed, err := catalog.RefreshSupplier(&p, supplier.Name(), fp)
			if err != nil {
				logging.L.ProductError(p.Barcode, taskID, err)
				continue
			}
			if !changed {
				summary.Unchanged++
				continue
			}

			summary.Refreshed++
			logging.L.Log("supplier_data_refreshed", logging.LevelInfo, "", taskID, models.JSONMap{
				"supplier": supplier.Name(),
				"barcode":  p.Barcode,
				"price":    fp.Price,
				"stock":    fp.StockLevel,
			})
			n, err := catalog.ReflagLiveListings(&p)
			if err != nil {
				logging.L.ProductError(p.Barcode, taskID, err)
				continue
			}
			summary.Reflagged += n
		}
	}

	logging.L.Log("update_supplier_data_summary", logging.LevelInfo, "", taskID, models.JSONMap{
		"refreshed":          summary.Refreshed,
		"pruned":             summary.Pruned,
		"unchanged":          summary.Unchanged,
		"listings_reflagged": summary.Reflagged,
	})
	logging.L.TaskEnd(taskID, "update_supplier_data", summary.Refreshed, 0, time.Since(start), 0)
	return summary, nil
}
