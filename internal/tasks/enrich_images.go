package tasks

import (
	"context"
	"sync/atomic"
	"time"

	"catalog-sync-backend/internal/catalog"
	"catalog-sync-backend/internal/config"
	"catalog-sync-backend/internal/images"
	"catalog-sync-backend/internal/logging"
	"catalog-sync-backend/internal/models"

	"golang.org/x/sync/errgroup"
)

const defaultImagesBatch = 50

type EnrichImagesOptions struct {
	Limit   int
	Workers int
}

type EnrichImagesSummary struct {
	Processed int
	Mirrored  int
}

// EnrichImages mirrors lookup source images onto the CDN. A product
// with no usable images still completes the stage, matching the rest of
// the pipeline's expectation that images_status eventually settles.
func EnrichImages(ctx context.Context, cfg *config.Config, opts EnrichImagesOptions) (EnrichImagesSummary, error) {
	taskID := logging.L.TaskStart("enrich_products_images")
	start := time.Now()

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultImagesBatch
	}

	products, err := catalog.PendingImages(limit)
	if err != nil {
		return EnrichImagesSummary{}, err
	}

	uploader := images.NewUploader(cfg)
	var processed, mirrored atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workersOrDefault(opts.Workers))

	for i := range products {
		p := products[i]
		g.Go(func() error {
			urls := sourceImageURLs(&p)

			var cdnURLs models.StringList
			for idx, src := range urls {
				cdnURL, err := uploader.Mirror(gctx, p.Barcode, src, idx)
				if err != nil {
					logging.L.Log("image_mirror_failed", logging.LevelWarning, "", taskID, models.JSONMap{
						"barcode": p.Barcode,
						"source":  src,
						"error":   err.Error(),
					})
					continue
				}
				cdnURLs = append(cdnURLs, cdnURL)
			}

			processed.Add(1)
			mirrored.Add(int64(len(cdnURLs)))

			updates := map[string]any{"images_status": models.StatusSuccess}
			if len(cdnURLs) > 0 {
				updates["image_urls"] = cdnURLs
			}
			return catalog.SetEnrichment(&p, updates)
		})
	}

	err = g.Wait()
	summary := EnrichImagesSummary{
		Processed: int(processed.Load()),
		Mirrored:  int(mirrored.Load()),
	}
	logging.L.TaskEnd(taskID, "enrich_products_images", summary.Processed, 0, time.Since(start), 0)
	return summary, err
}

func sourceImageURLs(p *models.Product) []string {
	raw, ok := p.LookupData["images"].([]any)
	if !ok {
		return nil
	}
	urls := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			urls = append(urls, s)
		}
	}
	return urls
}
