package tasks

import (
	"context"
	"errors"
	"time"

	"catalog-sync-backend/internal/catalog"
	"catalog-sync-backend/internal/config"
	"catalog-sync-backend/internal/logging"
	"catalog-sync-backend/internal/models"
	"catalog-sync-backend/internal/shop"
)

type UpdateListingsOptions struct {
	Shop   string
	Limit  int
	DryRun bool
}

type UpdateListingsSummary struct {
	Updated int
	Failed  int
	Skipped int
}

// UpdateListings pushes refreshed pricing and copy onto every
// update_pending listing, grouped per shop so each session is prepared
// once.
func UpdateListings(ctx context.Context, cfg *config.Config, opts UpdateListingsOptions) (UpdateListingsSummary, error) {
	taskID := logging.L.TaskStart("update_products_on_shopify")
	start := time.Now()

	pairs, err := catalog.MarkedForUpdate()
	if err != nil {
		return UpdateListingsSummary{}, err
	}
	pairs = filterPairs(pairs, "", opts.Shop, opts.Limit)

	byShop := map[uint][]catalog.Pair{}
	for _, pair := range pairs {
		byShop[pair.Shop.ID] = append(byShop[pair.Shop.ID], pair)
	}

	logging.L.Log("listing_update_started", logging.LevelInfo, "", taskID, models.JSONMap{
		"total_listings": len(pairs),
		"total_shops":    len(byShop),
		"dry_run":        opts.DryRun,
	})

	var summary UpdateListingsSummary
	for _, group := range byShop {
		s := group[0].Shop
		sess, err := shop.Prepare(ctx, cfg, &s)
		if err != nil {
			level := logging.LevelError
			if errors.Is(err, shop.ErrShopNotReady) {
				level = logging.LevelWarning
			}
			logging.L.Log("shop_prepare_failed", level, s.Domain, taskID, models.JSONMap{
				"error": err.Error(),
			})
			summary.Skipped += len(group)
			continue
		}

		for i := range group {
			pair := group[i]
			if err := updateOne(ctx, sess, &pair, opts.DryRun, taskID); err != nil {
				summary.Failed++
				logging.L.Log("listing_update_failed", logging.LevelError, s.Domain, taskID, models.JSONMap{
					"barcode": pair.Product.Barcode,
					"error":   err.Error(),
				})
				continue
			}
			if opts.DryRun {
				summary.Skipped++
			} else {
				summary.Updated++
			}
		}
	}

	logging.L.TaskEnd(taskID, "update_products_on_shopify", summary.Updated, summary.Failed, time.Since(start), 0)
	return summary, nil
}

func updateOne(ctx context.Context, sess *shop.Session, pair *catalog.Pair, dryRun bool, taskID string) error {
	link := catalog.BestSupplier(&pair.Product, sess.Shop)
	if link == nil {
		return errors.New("no in-stock supplier for product")
	}

	payload, err := catalog.BuildPayload(&pair.Product, sess.Shop, link)
	if err != nil {
		return err
	}

	if dryRun {
		logging.L.Log("listing_update_dry_run", logging.LevelInfo, sess.Shop.Domain, taskID, models.JSONMap{
			"barcode": pair.Product.Barcode,
			"price":   payload.Variant["price"],
		})
		return nil
	}

	input := map[string]any{"id": pair.Listing.RemoteProductID}
	for k, v := range payload.ProductInput {
		input[k] = v
	}
	if err := sess.Client.UpdateProduct(ctx, input); err != nil {
		return err
	}

	if pair.Listing.RemoteVariantID != "" {
		variant := withVariantID(payload.Variant, pair.Listing.RemoteVariantID)
		if err := sess.Client.UpdateVariant(ctx, pair.Listing.RemoteProductID, variant); err != nil {
			return err
		}
	}

	logging.L.Log("listing_updated", logging.LevelSuccess, sess.Shop.Domain, taskID, models.JSONMap{
		"barcode": pair.Product.Barcode,
		"price":   payload.Variant["price"],
	})
	return catalog.MarkListingUpdated(&pair.Listing)
}
