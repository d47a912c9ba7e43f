package suppliers

import "context"

// DummySupplier serves a static two-product feed so the pipeline can be
// exercised end to end without supplier credentials.
type DummySupplier struct {
	products map[string]FeedProduct
}

func NewDummySupplier() *DummySupplier {
	products := []FeedProduct{
		{
			Barcode:    "857640006424",
			Name:       "Dummy Product 1",
			Brand:      "Brand A",
			SKU:        "XYZ123",
			Price:      25.00,
			StockLevel: 100,
		},
		{
			Barcode:    "810028293847",
			Name:       "Dummy Product 2",
			Brand:      "Brand B",
			SKU:        "XYZ124",
			Price:      3.00,
			StockLevel: 10,
		},
	}

	byBarcode := make(map[string]FeedProduct, len(products))
	for _, p := range products {
		p.Raw = map[string]any{
			"ean":          p.Barcode,
			"name":         p.Name,
			"brand":        p.Brand,
			"product_code": p.SKU,
			"price":        p.Price,
			"stock_count":  p.StockLevel,
			"other_data":   "something",
		}
		byBarcode[p.Barcode] = p
	}
	return &DummySupplier{products: byBarcode}
}

func (s *DummySupplier) Name() string { return "Dummy Supplier" }

func (s *DummySupplier) Load(ctx context.Context) error { return nil }

func (s *DummySupplier) Barcodes() []string {
	barcodes := make([]string, 0, len(s.products))
	for b := range s.products {
		barcodes = append(barcodes, b)
	}
	return barcodes
}

func (s *DummySupplier) ProductByBarcode(barcode string) (FeedProduct, bool) {
	p, ok := s.products[barcode]
	return p, ok
}
