package catalog

import (
	"math"

	"catalog-sync-backend/internal/models"
)

// RetailPrice applies the shop's margin to the supplier cost, then
// settles on the configured psychological price point (cost 10.00 at
// margin 1.5 and rounding 0.99 becomes 15.99). The result never drops
// below cost*margin.
func RetailPrice(cost, margin, rounding float64) float64 {
	raw := cost * margin
	price := math.Floor(raw) + rounding
	if price < raw {
		price++
	}
	return math.Round(price*100) / 100
}

// BestSupplier picks the cheapest in-stock supplier link that the shop
// has not excluded. Returns nil when none qualifies.
func BestSupplier(p *models.Product, s *models.Shop) *models.SupplierLink {
	var best *models.SupplierLink
	for i := range p.SupplierLinks {
		link := &p.SupplierLinks[i]
		if !link.InStock() || s.ExcludedSuppliers.Contains(link.SupplierName) {
			continue
		}
		if best == nil || link.Price < best.Price {
			best = link
		}
	}
	return best
}
