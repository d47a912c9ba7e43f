// Package suppliers pulls wholesale product feeds. Each supplier
// normalizes its feed into FeedProduct rows keyed by barcode.
package suppliers

import "context"

// FeedProduct is one normalized row from a supplier feed. Raw keeps the
// unmodified feed fields for the AI enrichment prompt.
type FeedProduct struct {
	Barcode    string
	Name       string
	Brand      string
	SKU        string
	Price      float64
	StockLevel int
	Categories []string
	Raw        map[string]any
}

type Supplier interface {
	Name() string
	// Load fetches and parses the feed. Must be called before Barcodes
	// or ProductByBarcode.
	Load(ctx context.Context) error
	Barcodes() []string
	ProductByBarcode(barcode string) (FeedProduct, bool)
}
