package models

import "time"

// Enrichment status values shared by the lookup, image and AI pipelines.
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

type Product struct {
	ID      uint   `gorm:"primaryKey"`
	Barcode string `gorm:"size:64;not null;uniqueIndex"`

	LookupStatus string `gorm:"size:16;not null;default:pending;index"`
	ImagesStatus string `gorm:"size:16;not null;default:pending;index"`
	AIStatus     string `gorm:"size:16;not null;default:pending;index"`

	LookupData JSONMap    `gorm:"type:jsonb"`
	AIData     JSONMap    `gorm:"column:ai_data;type:jsonb"`
	ImageURLs  StringList `gorm:"type:jsonb"`

	SupplierLinks []SupplierLink
	Listings      []Listing

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsEnriched reports whether all three enrichment stages have completed.
func (p *Product) IsEnriched() bool {
	return p.LookupStatus == StatusSuccess &&
		p.ImagesStatus == StatusSuccess &&
		p.AIStatus == StatusSuccess
}

// Brand returns the brand from the barcode lookup payload, falling back
// to the manufacturer field.
func (p *Product) Brand() string {
	if p.LookupData == nil {
		return ""
	}
	if b, ok := p.LookupData["brand"].(string); ok && b != "" {
		return b
	}
	if m, ok := p.LookupData["manufacturer"].(string); ok {
		return m
	}
	return ""
}
