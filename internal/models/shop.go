package models

import "time"

// Default shop settings applied on install.
const (
	DefaultProfitMargin = 1.5
	DefaultRounding     = 0.99
)

// ScopeWriteProducts is required before any listing can be pushed.
const ScopeWriteProducts = "write_products"

type Shop struct {
	ID     uint   `gorm:"primaryKey"`
	Domain string `gorm:"size:255;not null;uniqueIndex"`

	// AccessToken is stored sealed, never in the clear.
	AccessToken string     `gorm:"size:512"`
	Scopes      StringList `gorm:"type:jsonb"`

	ExcludedSuppliers StringList `gorm:"type:jsonb"`
	ExcludedBrands    StringList `gorm:"type:jsonb"`
	ProfitMargin      float64    `gorm:"not null;default:1.5"`
	Rounding          float64    `gorm:"not null;default:0.99"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsReady reports whether the shop can accept product writes.
func (s *Shop) IsReady() bool {
	return s.AccessToken != "" && s.Scopes.Contains(ScopeWriteProducts)
}
