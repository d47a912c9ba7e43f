package models

import "time"

// SupplierLink ties a product to one supplier's feed entry. The raw feed
// row is kept alongside the parsed fields so listings can be regenerated
// without re-reading the feed.
type SupplierLink struct {
	ID           uint   `gorm:"primaryKey"`
	ProductID    uint   `gorm:"not null;uniqueIndex:idx_supplier_links_product_supplier"`
	SupplierName string `gorm:"size:100;not null;uniqueIndex:idx_supplier_links_product_supplier;index"`

	Name       string     `gorm:"size:255"`
	Brand      string     `gorm:"size:100"`
	SKU        string     `gorm:"size:100"`
	Price      float64    `gorm:"not null;default:0"`
	StockLevel int        `gorm:"not null;default:0"`
	Categories StringList `gorm:"type:jsonb"`
	RawData    JSONMap    `gorm:"type:jsonb"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (l *SupplierLink) InStock() bool {
	return l.StockLevel > 0
}
