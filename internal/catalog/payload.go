package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"catalog-sync-backend/internal/ai"
	"catalog-sync-backend/internal/models"
)

var ErrNotEnriched = errors.New("product is not fully enriched")

// Payload is everything needed to create or update a product on a
// storefront: the product input, the variant pricing, and the
// collections it belongs in.
type Payload struct {
	ProductInput map[string]any
	Variant      map[string]any
	Collections  []string
}

// GeneratedListing decodes the stored AI payload back into its schema.
func GeneratedListing(p *models.Product) (*ai.Listing, error) {
	if p.AIData == nil {
		return nil, fmt.Errorf("%w: missing AI data for %s", ErrNotEnriched, p.Barcode)
	}
	raw, err := json.Marshal(p.AIData)
	if err != nil {
		return nil, err
	}
	var listing ai.Listing
	if err := json.Unmarshal(raw, &listing); err != nil {
		return nil, fmt.Errorf("decode stored listing for %s: %w", p.Barcode, err)
	}
	return &listing, nil
}

// BuildPayload assembles the storefront payload for one product/shop
// pair using the given supplier link for pricing and stock.
func BuildPayload(p *models.Product, s *models.Shop, link *models.SupplierLink) (*Payload, error) {
	if !p.IsEnriched() {
		return nil, fmt.Errorf("%w: %s", ErrNotEnriched, p.Barcode)
	}

	listing, err := GeneratedListing(p)
	if err != nil {
		return nil, err
	}

	price := RetailPrice(link.Price, s.ProfitMargin, s.Rounding)

	input := map[string]any{
		"title":           listing.Title,
		"descriptionHtml": listing.Description,
		"productType":     listing.ProductType,
		"vendor":          vendorFor(p, link),
		"tags":            listing.Tags,
		"seo": map[string]any{
			"title":       listing.SEOTitle,
			"description": listing.SEODescription,
		},
	}

	variant := map[string]any{
		"price":   strconv.FormatFloat(price, 'f', 2, 64),
		"barcode": p.Barcode,
		"inventoryItem": map[string]any{
			"sku":  link.SKU,
			"cost": strconv.FormatFloat(link.Price, 'f', 2, 64),
		},
	}

	return &Payload{
		ProductInput: input,
		Variant:      variant,
		Collections:  listing.Collections(),
	}, nil
}

func vendorFor(p *models.Product, link *models.SupplierLink) string {
	if brand := p.Brand(); brand != "" {
		return brand
	}
	return link.Brand
}
