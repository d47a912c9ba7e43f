package tasks

import (
	"context"
	"encoding/json"
	"math"
	"sync"
	"time"

	"catalog-sync-backend/internal/ai"
	"catalog-sync-backend/internal/cache"
	"catalog-sync-backend/internal/catalog"
	"catalog-sync-backend/internal/config"
	"catalog-sync-backend/internal/logging"
	"catalog-sync-backend/internal/models"

	"golang.org/x/sync/errgroup"
)

type EnrichAIOptions struct {
	Limit    int
	Barcodes []string
	Brands   []string
	Workers  int
}

type EnrichAISummary struct {
	Success   int
	Failed    int
	CacheHits int
	TotalCost float64
}

// EnrichAI generates listing copy for products whose lookup and image
// stages succeeded. Generated payloads are cached by barcode so re-runs
// after partial failures do not pay twice.
func EnrichAI(ctx context.Context, cfg *config.Config, opts EnrichAIOptions) (EnrichAISummary, error) {
	taskID := logging.L.TaskStart("enrich_products_ai")
	start := time.Now()

	products, err := catalog.PendingAI(opts.Limit, opts.Barcodes, opts.Brands)
	if err != nil {
		return EnrichAISummary{}, err
	}

	logging.L.Log("ai_enrichment_started", logging.LevelInfo, "", taskID, models.JSONMap{
		"total_products": len(products),
	})

	generator, err := ai.NewGenerator(ctx, cfg)
	if err != nil {
		return EnrichAISummary{}, err
	}
	aiCache := cache.New("ai_generated::", cfg.EnableAICache)

	var (
		mu      sync.Mutex
		summary EnrichAISummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workersOrDefault(opts.Workers))

	for i := range products {
		p := products[i]
		g.Go(func() error {
			if cached, err := aiCache.Get(p.Barcode); err == nil && cached != nil {
				logging.L.Log("ai_cache_hit", logging.LevelInfo, "", taskID, models.JSONMap{"barcode": p.Barcode})
				mu.Lock()
				summary.CacheHits++
				summary.Success++
				mu.Unlock()
				return catalog.SetEnrichment(&p, map[string]any{
					"ai_status": models.StatusSuccess,
					"ai_data":   cached,
				})
			}

			supplierRows := make([]map[string]any, 0, len(p.SupplierLinks))
			for _, link := range p.SupplierLinks {
				if link.RawData != nil {
					supplierRows = append(supplierRows, link.RawData)
				}
			}
			if len(supplierRows) == 0 {
				// Nothing to write copy from; leave pending for the next
				// supplier refresh.
				return nil
			}

			listing, usage, err := generator.Generate(gctx, p.Barcode, p.LookupData, supplierRows)
			if err != nil {
				logging.L.ProductError(p.Barcode, taskID, err)
				mu.Lock()
				summary.Failed++
				mu.Unlock()
				return catalog.SetEnrichment(&p, map[string]any{
					"ai_status": models.StatusFailed,
				})
			}

			data, err := listingToMap(listing)
			if err != nil {
				mu.Lock()
				summary.Failed++
				mu.Unlock()
				return err
			}

			cost := usage.Cost(cfg.GenAIModel)
			logging.L.Log("ai_generation_success", logging.LevelSuccess, "", taskID, models.JSONMap{
				"barcode":       p.Barcode,
				"input_tokens":  usage.InputTokens,
				"output_tokens": usage.OutputTokens,
				"total_cost":    math.Round(cost*10000) / 10000,
			})

			if err := aiCache.Set(p.Barcode, data); err != nil {
				logging.L.Log("ai_cache_write_failed", logging.LevelWarning, "", taskID, models.JSONMap{
					"barcode": p.Barcode, "error": err.Error(),
				})
			}

			mu.Lock()
			summary.Success++
			summary.TotalCost += cost
			mu.Unlock()

			return catalog.SetEnrichment(&p, map[string]any{
				"ai_status": models.StatusSuccess,
				"ai_data":   data,
			})
		})
	}

	err = g.Wait()

	logging.L.Log("ai_enrichment_cost_summary", logging.LevelInfo, "", taskID, models.JSONMap{
		"total_cost": math.Round(summary.TotalCost*10000) / 10000,
	})
	logging.L.TaskEnd(taskID, "enrich_products_ai", summary.Success, summary.Failed, time.Since(start), summary.CacheHits)
	return summary, err
}

func listingToMap(listing *ai.Listing) (models.JSONMap, error) {
	raw, err := json.Marshal(listing)
	if err != nil {
		return nil, err
	}
	var data models.JSONMap
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}
