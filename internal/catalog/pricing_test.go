package catalog

import (
	"testing"

	"catalog-sync-backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRetailPrice(t *testing.T) {
	tests := []struct {
		name     string
		cost     float64
		margin   float64
		rounding float64
		want     float64
	}{
		{"whole raw price bumps past margin", 10.00, 1.5, 0.99, 15.99},
		{"fractional raw price floors down", 10.50, 1.5, 0.99, 15.99},
		{"rounding below fraction bumps a unit", 10.50, 1.5, 0.49, 16.49},
		{"default settings on dummy product", 25.00, 1.5, 0.99, 37.99},
		{"cheap product keeps margin", 3.00, 1.5, 0.99, 4.99},
		{"zero rounding", 10.40, 1.5, 0, 16.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RetailPrice(tt.cost, tt.margin, tt.rounding)
			assert.InDelta(t, tt.want, got, 0.001)
			assert.GreaterOrEqual(t, got, tt.cost*tt.margin-0.001)
		})
	}
}

func TestBestSupplier(t *testing.T) {
	product := &models.Product{
		SupplierLinks: []models.SupplierLink{
			{SupplierName: "Tropicana Wholesale", Price: 12.00, StockLevel: 5},
			{SupplierName: "Dummy Supplier", Price: 10.00, StockLevel: 0},
			{SupplierName: "Other Supplier", Price: 11.00, StockLevel: 3},
		},
	}

	t.Run("cheapest in-stock wins", func(t *testing.T) {
		s := &models.Shop{}
		best := BestSupplier(product, s)
		assert.NotNil(t, best)
		assert.Equal(t, "Other Supplier", best.SupplierName)
	})

	t.Run("exclusions are honored", func(t *testing.T) {
		s := &models.Shop{ExcludedSuppliers: models.StringList{"Other Supplier"}}
		best := BestSupplier(product, s)
		assert.NotNil(t, best)
		assert.Equal(t, "Tropicana Wholesale", best.SupplierName)
	})

	t.Run("nothing qualifies", func(t *testing.T) {
		s := &models.Shop{ExcludedSuppliers: models.StringList{"Other Supplier", "Tropicana Wholesale"}}
		assert.Nil(t, BestSupplier(product, s))
	})
}
