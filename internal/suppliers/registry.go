package suppliers

import "catalog-sync-backend/internal/config"

// Active returns the suppliers to run against. With dummy data enabled,
// or no supplier credentials configured, only the dummy feed is used.
func Active(cfg *config.Config) []Supplier {
	if cfg.UseDummyData {
		return []Supplier{NewDummySupplier()}
	}

	var active []Supplier
	if cfg.TropicanaSFTPHost != "" {
		active = append(active, NewTropicanaSupplier(cfg))
	}
	if len(active) == 0 {
		active = append(active, NewDummySupplier())
	}
	return active
}
