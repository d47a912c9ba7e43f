// Package catalog owns the product pipeline state: discovery inserts,
// enrichment status transitions, supplier links and shop listings.
package catalog

import (
	"errors"
	"fmt"

	"catalog-sync-backend/internal/database"
	"catalog-sync-backend/internal/logging"
	"catalog-sync-backend/internal/models"
	"catalog-sync-backend/internal/suppliers"

	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

func ByBarcode(barcode string) (*models.Product, error) {
	var p models.Product
	err := database.DB.Preload("SupplierLinks").Preload("Listings").
		Where("barcode = ?", barcode).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, barcode)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateFromFeed inserts a newly discovered product with its first
// supplier link and every enrichment stage pending.
func CreateFromFeed(supplierName string, fp suppliers.FeedProduct) (*models.Product, error) {
	p := &models.Product{
		Barcode:      fp.Barcode,
		LookupStatus: models.StatusPending,
		ImagesStatus: models.StatusPending,
		AIStatus:     models.StatusPending,
		SupplierLinks: []models.SupplierLink{
			linkFromFeed(supplierName, fp),
		},
	}
	if err := database.DB.Create(p).Error; err != nil {
		return nil, err
	}

	logging.L.Log("product_added", logging.LevelInfo, "", "", models.JSONMap{
		"barcode":  fp.Barcode,
		"supplier": supplierName,
		"message":  "New product added to the database.",
	})
	return p, nil
}

func linkFromFeed(supplierName string, fp suppliers.FeedProduct) models.SupplierLink {
	return models.SupplierLink{
		SupplierName: supplierName,
		Name:         fp.Name,
		Brand:        fp.Brand,
		SKU:          fp.SKU,
		Price:        fp.Price,
		StockLevel:   fp.StockLevel,
		Categories:   models.StringList(fp.Categories),
		RawData:      models.JSONMap(fp.Raw),
	}
}

// AttachSupplier adds a supplier link to an existing product. No-op when
// the supplier is already linked.
func AttachSupplier(p *models.Product, supplierName string, fp suppliers.FeedProduct) (bool, error) {
	for _, link := range p.SupplierLinks {
		if link.SupplierName == supplierName {
			return false, nil
		}
	}

	link := linkFromFeed(supplierName, fp)
	link.ProductID = p.ID
	if err := database.DB.Create(&link).Error; err != nil {
		return false, err
	}
	p.SupplierLinks = append(p.SupplierLinks, link)

	logging.L.Log("supplier_added", logging.LevelInfo, "", "", models.JSONMap{
		"barcode":  p.Barcode,
		"supplier": supplierName,
	})
	return true, nil
}

// RefreshSupplier overwrites a supplier link with fresh feed data and
// reports whether anything changed.
func RefreshSupplier(p *models.Product, supplierName string, fp suppliers.FeedProduct) (bool, error) {
	for i, link := range p.SupplierLinks {
		if link.SupplierName != supplierName {
			continue
		}

		if link.Price == fp.Price && link.StockLevel == fp.StockLevel &&
			link.Name == fp.Name && link.SKU == fp.SKU {
			return false, nil
		}

		updated := linkFromFeed(supplierName, fp)
		updated.ID = link.ID
		updated.ProductID = p.ID
		updated.CreatedAt = link.CreatedAt
		if err := database.DB.Save(&updated).Error; err != nil {
			return false, err
		}
		p.SupplierLinks[i] = updated
		return true, nil
	}
	return false, fmt.Errorf("supplier %s not linked to product %s", supplierName, p.Barcode)
}

// PruneSupplier removes a supplier link, reporting whether one existed.
func PruneSupplier(p *models.Product, supplierName string) (bool, error) {
	kept := p.SupplierLinks[:0]
	var removed bool
	for _, link := range p.SupplierLinks {
		if link.SupplierName == supplierName {
			if err := database.DB.Delete(&models.SupplierLink{}, link.ID).Error; err != nil {
				return false, err
			}
			removed = true
			continue
		}
		kept = append(kept, link)
	}
	p.SupplierLinks = kept

	if removed {
		logging.L.Log("supplier_removed", logging.LevelInfo, "", "", models.JSONMap{
			"barcode":  p.Barcode,
			"supplier": supplierName,
		})
	}
	return removed, nil
}

// SetEnrichment updates one or more enrichment columns on a product.
func SetEnrichment(p *models.Product, updates map[string]any) error {
	return database.DB.Model(p).Updates(updates).Error
}

// PendingLookup lists products awaiting barcode lookup.
func PendingLookup(limit int) ([]models.Product, error) {
	q := database.DB.Where("lookup_status = ?", models.StatusPending)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.Product
	return out, q.Find(&out).Error
}

// PendingImages lists products whose lookup succeeded but whose images
// are not mirrored yet.
func PendingImages(limit int) ([]models.Product, error) {
	q := database.DB.Where("lookup_status = ? AND images_status = ?",
		models.StatusSuccess, models.StatusPending)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.Product
	return out, q.Find(&out).Error
}

// BySupplier lists fully enriched products carrying a link to the named
// supplier, with links preloaded.
func BySupplier(supplierName string, limit int) ([]models.Product, error) {
	q := database.DB.Preload("SupplierLinks").
		Joins("JOIN supplier_links ON supplier_links.product_id = products.id AND supplier_links.supplier_name = ?", supplierName).
		Where("products.lookup_status = ? AND products.images_status = ? AND products.ai_status = ?",
			models.StatusSuccess, models.StatusSuccess, models.StatusSuccess)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.Product
	return out, q.Find(&out).Error
}

// PendingAI lists products ready for AI enrichment, optionally filtered
// by barcode or brand.
func PendingAI(limit int, barcodes, brands []string) ([]models.Product, error) {
	q := database.DB.Preload("SupplierLinks").
		Where("lookup_status = ? AND images_status = ? AND ai_status = ?",
			models.StatusSuccess, models.StatusSuccess, models.StatusPending)
	if len(barcodes) > 0 {
		q = q.Where("barcode IN ?", barcodes)
	}
	if len(brands) == 0 {
		if limit > 0 {
			q = q.Limit(limit)
		}
		var out []models.Product
		return out, q.Find(&out).Error
	}

	// Brand matching honors the manufacturer fallback, so filter in Go
	// rather than against lookup_data in SQL.
	var all []models.Product
	if err := q.Find(&all).Error; err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(brands))
	for _, b := range brands {
		wanted[b] = true
	}
	out := make([]models.Product, 0, len(all))
	for i := range all {
		if !wanted[all[i].Brand()] {
			continue
		}
		out = append(out, all[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
