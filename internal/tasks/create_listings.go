package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"catalog-sync-backend/internal/catalog"
	"catalog-sync-backend/internal/config"
	"catalog-sync-backend/internal/logging"
	"catalog-sync-backend/internal/models"
	"catalog-sync-backend/internal/shop"
	"catalog-sync-backend/internal/shopify"

	"golang.org/x/sync/errgroup"
)

type CreateListingsOptions struct {
	Barcode string
	Shop    string
	Limit   int
	DryRun  bool
	Workers int
}

type CreateListingsSummary struct {
	Created int
	Failed  int
	Skipped int
}

// CreateListings pushes every create_pending listing to its shop.
// Sessions are prepared once per shop; shops that fail preparation have
// all their pending listings skipped for this run.
func CreateListings(ctx context.Context, cfg *config.Config, opts CreateListingsOptions) (CreateListingsSummary, error) {
	taskID := logging.L.TaskStart("create_products_on_shopify")
	start := time.Now()

	pairs, err := catalog.ReadyForCreate()
	if err != nil {
		return CreateListingsSummary{}, err
	}
	pairs = filterPairs(pairs, opts.Barcode, opts.Shop, opts.Limit)

	logging.L.Log("listing_creation_started", logging.LevelInfo, "", taskID, models.JSONMap{
		"total_listings": len(pairs),
		"dry_run":        opts.DryRun,
	})

	var (
		mu       sync.Mutex
		summary  CreateListingsSummary
		sessions = map[uint]*shop.Session{}
	)

	// Session preparation talks to the storefront API, so keep it serial
	// and shared; a failed shop is cached as nil.
	sessionFor := func(s *models.Shop) *shop.Session {
		mu.Lock()
		defer mu.Unlock()
		if sess, ok := sessions[s.ID]; ok {
			return sess
		}
		sess, err := shop.Prepare(ctx, cfg, s)
		if err != nil {
			if errors.Is(err, shop.ErrShopNotReady) {
				logging.L.Log("shop_not_ready", logging.LevelWarning, s.Domain, taskID, models.JSONMap{
					"error": err.Error(),
				})
			} else {
				logging.L.Log("shop_prepare_failed", logging.LevelError, s.Domain, taskID, models.JSONMap{
					"error": err.Error(),
				})
			}
			sessions[s.ID] = nil
			return nil
		}
		sessions[s.ID] = sess
		return sess
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workersOrDefault(opts.Workers))

	for i := range pairs {
		pair := pairs[i]
		g.Go(func() error {
			sess := sessionFor(&pair.Shop)
			if sess == nil {
				mu.Lock()
				summary.Skipped++
				mu.Unlock()
				return nil
			}

			link := catalog.BestSupplier(&pair.Product, &pair.Shop)
			if link == nil {
				mu.Lock()
				summary.Skipped++
				mu.Unlock()
				logging.L.Log("no_supplier_in_stock", logging.LevelWarning, pair.Shop.Domain, taskID, models.JSONMap{
					"barcode": pair.Product.Barcode,
				})
				return nil
			}

			payload, err := catalog.BuildPayload(&pair.Product, &pair.Shop, link)
			if err != nil {
				mu.Lock()
				summary.Failed++
				mu.Unlock()
				logging.L.ProductError(pair.Product.Barcode, taskID, err)
				return catalog.MarkListingFailed(&pair.Listing, err)
			}

			if opts.DryRun {
				logging.L.Log("listing_create_dry_run", logging.LevelInfo, pair.Shop.Domain, taskID, models.JSONMap{
					"barcode":     pair.Product.Barcode,
					"title":       payload.ProductInput["title"],
					"collections": payload.Collections,
				})
				mu.Lock()
				summary.Skipped++
				mu.Unlock()
				return nil
			}

			info, err := createOne(gctx, sess, payload)
			if err != nil {
				mu.Lock()
				summary.Failed++
				mu.Unlock()
				logging.L.Log("listing_create_failed", logging.LevelError, pair.Shop.Domain, taskID, models.JSONMap{
					"barcode": pair.Product.Barcode,
					"error":   err.Error(),
				})
				return catalog.MarkListingFailed(&pair.Listing, err)
			}

			mu.Lock()
			summary.Created++
			mu.Unlock()
			logging.L.Log("listing_created", logging.LevelSuccess, pair.Shop.Domain, taskID, models.JSONMap{
				"barcode":           pair.Product.Barcode,
				"remote_product_id": info.ID,
				"handle":            info.Handle,
			})
			return catalog.MarkListingCreated(&pair.Listing, info.ID, info.VariantID)
		})
	}

	err = g.Wait()
	logging.L.TaskEnd(taskID, "create_products_on_shopify", summary.Created, summary.Failed, time.Since(start), 0)
	return summary, err
}

func createOne(ctx context.Context, sess *shop.Session, payload *catalog.Payload) (*shopify.ProductInfo, error) {
	info, err := sess.Client.CreateProduct(ctx, payload.ProductInput)
	if err != nil {
		return nil, err
	}

	if info.VariantID != "" {
		if err := sess.Client.UpdateVariant(ctx, info.ID, withVariantID(payload.Variant, info.VariantID)); err != nil {
			return nil, err
		}
	}

	for _, title := range payload.Collections {
		collectionID, err := sess.EnsureCollection(ctx, title)
		if err != nil {
			return nil, err
		}
		if err := sess.Client.AddProductsToCollection(ctx, collectionID, []string{info.ID}); err != nil {
			return nil, err
		}
	}
	return info, nil
}

func withVariantID(variant map[string]any, id string) map[string]any {
	out := make(map[string]any, len(variant)+1)
	for k, v := range variant {
		out[k] = v
	}
	out["id"] = id
	return out
}

func filterPairs(pairs []catalog.Pair, barcode, shopDomain string, limit int) []catalog.Pair {
	filtered := pairs[:0]
	for _, pair := range pairs {
		if barcode != "" && pair.Product.Barcode != barcode {
			continue
		}
		if shopDomain != "" && pair.Shop.Domain != shopDomain {
			continue
		}
		filtered = append(filtered, pair)
		if limit > 0 && len(filtered) >= limit {
			break
		}
	}
	return filtered
}
