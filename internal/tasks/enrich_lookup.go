package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"catalog-sync-backend/internal/barcode"
	"catalog-sync-backend/internal/catalog"
	"catalog-sync-backend/internal/config"
	"catalog-sync-backend/internal/logging"
	"catalog-sync-backend/internal/models"

	"golang.org/x/sync/errgroup"
)

const defaultLookupBatch = 500

type EnrichLookupOptions struct {
	Limit   int
	Workers int
}

type EnrichLookupSummary struct {
	Enriched int
	Failed   int
}

// EnrichLookup resolves pending products against the barcode lookup
// API. Failures flip the product to failed so it is not retried forever.
func EnrichLookup(ctx context.Context, cfg *config.Config, opts EnrichLookupOptions) (EnrichLookupSummary, error) {
	taskID := logging.L.TaskStart("enrich_products_barcode_lookup")
	start := time.Now()

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLookupBatch
	}

	products, err := catalog.PendingLookup(limit)
	if err != nil {
		return EnrichLookupSummary{}, err
	}

	logging.L.Log("barcode_lookup_batch", logging.LevelInfo, "", taskID, models.JSONMap{
		"count": len(products),
	})

	client := barcode.NewClient(cfg)
	var enriched, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workersOrDefault(opts.Workers))

	for i := range products {
		p := products[i]
		g.Go(func() error {
			data, err := client.Lookup(gctx, p.Barcode)
			if err != nil {
				failed.Add(1)
				if !errors.Is(err, barcode.ErrNotFound) {
					logging.L.ProductError(p.Barcode, taskID, err)
				}
				return catalog.SetEnrichment(&p, map[string]any{
					"lookup_status": models.StatusFailed,
				})
			}

			enriched.Add(1)
			return catalog.SetEnrichment(&p, map[string]any{
				"lookup_status": models.StatusSuccess,
				"lookup_data":   models.JSONMap(data),
			})
		})
	}

	err = g.Wait()
	summary := EnrichLookupSummary{
		Enriched: int(enriched.Load()),
		Failed:   int(failed.Load()),
	}
	logging.L.TaskEnd(taskID, "enrich_products_barcode_lookup", summary.Enriched, summary.Failed, time.Since(start), 0)
	return summary, err
}

func workersOrDefault(n int) int {
	if n <= 0 {
		return 4
	}
	return n
}
