package catalog

import (
	"catalog-sync-backend/internal/database"
	"catalog-sync-backend/internal/logging"
	"catalog-sync-backend/internal/models"
)

// Pair joins one listing with its product and shop rows for the create
// and update tasks.
type Pair struct {
	Listing models.Listing
	Product models.Product
	Shop    models.Shop
}

// FlagForShop marks a product create_pending for a shop.
func FlagForShop(p *models.Product, s *models.Shop, taskID string) error {
	listing := models.Listing{
		ProductID: p.ID,
		ShopID:    s.ID,
		Status:    models.ListingCreatePending,
	}
	if err := database.DB.Create(&listing).Error; err != nil {
		return err
	}

	logging.L.Log("product_flagged_for_create", logging.LevelInfo, s.Domain, taskID, models.JSONMap{
		"barcode": p.Barcode,
	})
	return nil
}

// HasListing reports whether the product already has a listing row for
// the shop, in any status.
func HasListing(p *models.Product, s *models.Shop) bool {
	for _, l := range p.Listings {
		if l.ShopID == s.ID {
			return true
		}
	}
	return false
}

func pairsByStatus(status string) ([]Pair, error) {
	var listings []models.Listing
	if err := database.DB.Where("status = ?", status).Find(&listings).Error; err != nil {
		return nil, err
	}

	pairs := make([]Pair, 0, len(listings))
	for _, l := range listings {
		var p models.Product
		if err := database.DB.Preload("SupplierLinks").First(&p, l.ProductID).Error; err != nil {
			return nil, err
		}
		var s models.Shop
		if err := database.DB.First(&s, l.ShopID).Error; err != nil {
			return nil, err
		}
		pairs = append(pairs, Pair{Listing: l, Product: p, Shop: s})
	}
	return pairs, nil
}

// ReadyForCreate returns every create_pending listing with its product
// and shop.
func ReadyForCreate() ([]Pair, error) {
	return pairsByStatus(models.ListingCreatePending)
}

// MarkedForUpdate returns every update_pending listing with its product
// and shop.
func MarkedForUpdate() ([]Pair, error) {
	return pairsByStatus(models.ListingUpdatePending)
}

// FailedCreates returns every create_failed listing for retry handling.
func FailedCreates() ([]Pair, error) {
	return pairsByStatus(models.ListingCreateFailed)
}

// MarkListingCreated records the remote IDs after a successful create.
func MarkListingCreated(l *models.Listing, remoteProductID, remoteVariantID string) error {
	return database.DB.Model(l).Updates(map[string]any{
		"status":            models.ListingCreated,
		"remote_product_id": remoteProductID,
		"remote_variant_id": remoteVariantID,
		"last_error":        "",
	}).Error
}

func MarkListingFailed(l *models.Listing, cause error) error {
	msg := cause.Error()
	if len(msg) > 1000 {
		msg = msg[:1000]
	}
	return database.DB.Model(l).Updates(map[string]any{
		"status":     models.ListingCreateFailed,
		"last_error": msg,
	}).Error
}

func MarkListingUpdated(l *models.Listing) error {
	return database.DB.Model(l).Updates(map[string]any{
		"status":     models.ListingUpdated,
		"last_error": "",
	}).Error
}

// ReflagForRetry moves a failed listing back to create_pending and
// bumps its retry counter.
func ReflagForRetry(l *models.Listing) error {
	return database.DB.Model(l).Updates(map[string]any{
		"status":      models.ListingCreatePending,
		"retry_count": l.RetryCount + 1,
	}).Error
}

// ReflagLiveListings marks the product's created/updated listings
// update_pending, so supplier changes propagate to storefronts.
func ReflagLiveListings(p *models.Product) (int64, error) {
	res := database.DB.Model(&models.Listing{}).
		Where("product_id = ? AND status IN ?", p.ID,
			[]string{models.ListingCreated, models.ListingUpdated}).
		Update("status", models.ListingUpdatePending)
	return res.RowsAffected, res.Error
}
