package catalog

import (
	"testing"

	"catalog-sync-backend/internal/database"
	"catalog-sync-backend/internal/models"
	"catalog-sync-backend/internal/suppliers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
}

func feedProduct(barcode string) suppliers.FeedProduct {
	return suppliers.FeedProduct{
		Barcode:    barcode,
		Name:       "Whey Protein Vanilla 1kg",
		Brand:      "Example Nutrition",
		SKU:        "TW-001",
		Price:      18.50,
		StockLevel: 42,
		Categories: []string{"Protein Powder"},
		Raw:        map[string]any{"Barcode": barcode, "ProductPrice": "18.50"},
	}
}

func TestCreateFromFeed(t *testing.T) {
	setupTestDB(t)

	p, err := CreateFromFeed("Tropicana Wholesale", feedProduct("5056555201234"))
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, p.LookupStatus)
	assert.Equal(t, models.StatusPending, p.ImagesStatus)
	assert.Equal(t, models.StatusPending, p.AIStatus)

	stored, err := ByBarcode("5056555201234")
	require.NoError(t, err)
	require.Len(t, stored.SupplierLinks, 1)
	link := stored.SupplierLinks[0]
	assert.Equal(t, "Tropicana Wholesale", link.SupplierName)
	assert.Equal(t, 18.50, link.Price)
	assert.Equal(t, []string{"Protein Powder"}, []string(link.Categories))
	assert.Equal(t, "18.50", link.RawData["ProductPrice"])
}

func TestByBarcodeNotFound(t *testing.T) {
	setupTestDB(t)

	_, err := ByBarcode("0000000000000")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestAttachSupplierIsIdempotent(t *testing.T) {
	setupTestDB(t)

	p, err := CreateFromFeed("Tropicana Wholesale", feedProduct("5056555201234"))
	require.NoError(t, err)

	added, err := AttachSupplier(p, "Dummy Supplier", feedProduct("5056555201234"))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = AttachSupplier(p, "Dummy Supplier", feedProduct("5056555201234"))
	require.NoError(t, err)
	assert.False(t, added)

	stored, err := ByBarcode("5056555201234")
	require.NoError(t, err)
	assert.Len(t, stored.SupplierLinks, 2)
}

func TestRefreshSupplier(t *testing.T) {
	setupTestDB(t)

	p, err := CreateFromFeed("Tropicana Wholesale", feedProduct("5056555201234"))
	require.NoError(t, err)

	t.Run("unchanged feed is a no-op", func(t *testing.T) {
		changed, err := RefreshSupplier(p, "Tropicana Wholesale", feedProduct("5056555201234"))
		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("price change persists", func(t *testing.T) {
		fp := feedProduct("5056555201234")
		fp.Price = 19.99
		fp.StockLevel = 7

		changed, err := RefreshSupplier(p, "Tropicana Wholesale", fp)
		require.NoError(t, err)
		assert.True(t, changed)

		stored, err := ByBarcode("5056555201234")
		require.NoError(t, err)
		require.Len(t, stored.SupplierLinks, 1)
		assert.Equal(t, 19.99, stored.SupplierLinks[0].Price)
		assert.Equal(t, 7, stored.SupplierLinks[0].StockLevel)
	})

	t.Run("unlinked supplier errors", func(t *testing.T) {
		_, err := RefreshSupplier(p, "Nobody", feedProduct("5056555201234"))
		assert.Error(t, err)
	})
}

func TestPruneSupplier(t *testing.T) {
	setupTestDB(t)

	p, err := CreateFromFeed("Tropicana Wholesale", feedProduct("5056555201234"))
	require.NoError(t, err)
	_, err = AttachSupplier(p, "Dummy Supplier", feedProduct("5056555201234"))
	require.NoError(t, err)

	removed, err := PruneSupplier(p, "Tropicana Wholesale")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = PruneSupplier(p, "Tropicana Wholesale")
	require.NoError(t, err)
	assert.False(t, removed)

	stored, err := ByBarcode("5056555201234")
	require.NoError(t, err)
	require.Len(t, stored.SupplierLinks, 1)
	assert.Equal(t, "Dummy Supplier", stored.SupplierLinks[0].SupplierName)
}

func TestPendingQueues(t *testing.T) {
	setupTestDB(t)

	fresh, err := CreateFromFeed("Tropicana Wholesale", feedProduct("5056555201111"))
	require.NoError(t, err)

	looked, err := CreateFromFeed("Tropicana Wholesale", feedProduct("5056555202222"))
	require.NoError(t, err)
	require.NoError(t, SetEnrichment(looked, map[string]any{
		"lookup_status": models.StatusSuccess,
		"lookup_data":   models.JSONMap{"brand": "Example Nutrition"},
	}))

	imaged, err := CreateFromFeed("Tropicana Wholesale", feedProduct("5056555203333"))
	require.NoError(t, err)
	require.NoError(t, SetEnrichment(imaged, map[string]any{
		"lookup_status": models.StatusSuccess,
		"images_status": models.StatusSuccess,
	}))

	pendingLookup, err := PendingLookup(0)
	require.NoError(t, err)
	require.Len(t, pendingLookup, 1)
	assert.Equal(t, fresh.Barcode, pendingLookup[0].Barcode)

	pendingImages, err := PendingImages(0)
	require.NoError(t, err)
	require.Len(t, pendingImages, 1)
	assert.Equal(t, looked.Barcode, pendingImages[0].Barcode)

	pendingAI, err := PendingAI(0, nil, nil)
	require.NoError(t, err)
	require.Len(t, pendingAI, 1)
	assert.Equal(t, imaged.Barcode, pendingAI[0].Barcode)

	filtered, err := PendingAI(0, []string{"no-such-barcode"}, nil)
	require.NoError(t, err)
	assert.Empty(t, filtered)
}

func TestPendingAIBrandFilter(t *testing.T) {
	setupTestDB(t)

	aiPending := func(barcode string, lookup models.JSONMap) *models.Product {
		p, err := CreateFromFeed("Tropicana Wholesale", feedProduct(barcode))
		require.NoError(t, err)
		require.NoError(t, SetEnrichment(p, map[string]any{
			"lookup_status": models.StatusSuccess,
			"images_status": models.StatusSuccess,
			"lookup_data":   lookup,
		}))
		return p
	}

	branded := aiPending("5056555204444", models.JSONMap{"brand": "Example Nutrition"})
	// Lookup payloads sometimes only carry a manufacturer.
	byMaker := aiPending("5056555205555", models.JSONMap{"manufacturer": "Acme Labs"})
	aiPending("5056555206666", models.JSONMap{"brand": "Other Brand"})

	got, err := PendingAI(0, nil, []string{"Example Nutrition", "Acme Labs"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	barcodes := []string{got[0].Barcode, got[1].Barcode}
	assert.Contains(t, barcodes, branded.Barcode)
	assert.Contains(t, barcodes, byMaker.Barcode)

	capped, err := PendingAI(1, nil, []string{"Example Nutrition", "Acme Labs"})
	require.NoError(t, err)
	assert.Len(t, capped, 1)
}

func TestListingLifecycle(t *testing.T) {
	setupTestDB(t)

	s := models.Shop{Domain: "example.myshopify.com"}
	require.NoError(t, database.DB.Create(&s).Error)

	p, err := CreateFromFeed("Tropicana Wholesale", feedProduct("5056555201234"))
	require.NoError(t, err)

	require.NoError(t, FlagForShop(p, &s, "task-1"))

	pairs, err := ReadyForCreate()
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	listing := pairs[0].Listing
	assert.Equal(t, p.ID, pairs[0].Product.ID)
	assert.Equal(t, s.ID, pairs[0].Shop.ID)

	require.NoError(t, MarkListingFailed(&listing, assert.AnError))

	failed, err := FailedCreates()
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, assert.AnError.Error(), failed[0].Listing.LastError)

	require.NoError(t, ReflagForRetry(&failed[0].Listing))
	pairs, err = ReadyForCreate()
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, 1, pairs[0].Listing.RetryCount)

	require.NoError(t, MarkListingCreated(&pairs[0].Listing, "gid://shopify/Product/1", "gid://shopify/ProductVariant/11"))

	var live models.Listing
	require.NoError(t, database.DB.First(&live, listing.ID).Error)
	assert.Equal(t, models.ListingCreated, live.Status)
	assert.Empty(t, live.LastError)
	assert.True(t, live.IsLive())

	reflagged, err := ReflagLiveListings(p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), reflagged)

	updates, err := MarkedForUpdate()
	require.NoError(t, err)
	require.Len(t, updates, 1)

	require.NoError(t, MarkListingUpdated(&updates[0].Listing))
	var updated models.Listing
	require.NoError(t, database.DB.First(&updated, listing.ID).Error)
	assert.Equal(t, models.ListingUpdated, updated.Status)
}

func TestBuildPayload(t *testing.T) {
	p := &models.Product{
		Barcode:      "5056555201234",
		LookupStatus: models.StatusSuccess,
		ImagesStatus: models.StatusSuccess,
		AIStatus:     models.StatusSuccess,
		LookupData:   models.JSONMap{"brand": "Example Nutrition"},
		AIData: models.JSONMap{
			"title":              "Whey Protein Vanilla 1kg",
			"description":        "<p>Smooth vanilla whey.</p>",
			"product_type":       "Protein Powder",
			"primary_collection": "Whey Protein",
			"tags":               []any{"protein", "whey"},
			"seo_title":          "Whey Protein Vanilla",
			"seo_description":    "Premium vanilla whey protein.",
		},
	}
	s := &models.Shop{ProfitMargin: 1.5, Rounding: 0.99}
	link := &models.SupplierLink{SKU: "TW-001", Price: 18.50, StockLevel: 42}

	payload, err := BuildPayload(p, s, link)
	require.NoError(t, err)

	assert.Equal(t, "Whey Protein Vanilla 1kg", payload.ProductInput["title"])
	assert.Equal(t, "Example Nutrition", payload.ProductInput["vendor"])
	assert.Equal(t, "Protein Powder", payload.ProductInput["productType"])

	assert.Equal(t, "27.99", payload.Variant["price"])
	assert.Equal(t, "5056555201234", payload.Variant["barcode"])
	inventoryItem := payload.Variant["inventoryItem"].(map[string]any)
	assert.Equal(t, "TW-001", inventoryItem["sku"])
	assert.Equal(t, "18.50", inventoryItem["cost"])

	assert.Equal(t, []string{"Whey Protein"}, payload.Collections)
}

func TestBuildPayloadRequiresEnrichment(t *testing.T) {
	p := &models.Product{Barcode: "5056555201234", LookupStatus: models.StatusPending}
	s := &models.Shop{ProfitMargin: 1.5, Rounding: 0.99}

	_, err := BuildPayload(p, s, &models.SupplierLink{})
	assert.ErrorIs(t, err, ErrNotEnriched)
}
