package models

import "time"

// Listing lifecycle. A flagged product moves create_pending -> created
// (or create_failed), and live listings are re-flagged update_pending
// when supplier data changes.
const (
	ListingCreatePending = "create_pending"
	ListingCreated       = "created"
	ListingCreateFailed  = "create_failed"
	ListingUpdatePending = "update_pending"
	ListingUpdated       = "updated"
)

type Listing struct {
	ID        uint `gorm:"primaryKey"`
	ProductID uint `gorm:"not null;uniqueIndex:idx_listings_product_shop"`
	ShopID    uint `gorm:"not null;uniqueIndex:idx_listings_product_shop;index"`

	Status     string `gorm:"size:20;not null;default:create_pending;index"`
	RetryCount int    `gorm:"not null;default:0"`
	LastError  string `gorm:"size:1000"`

	// Shopify GIDs, set once the product has been created remotely.
	RemoteProductID string `gorm:"size:100"`
	RemoteVariantID string `gorm:"size:100"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (l *Listing) IsLive() bool {
	return l.Status == ListingCreated || l.Status == ListingUpdated
}
