// Package shop wraps the shops table with the operations the pipeline
// needs: readiness checks, sealed token handling, eligibility rules and
// per-shop Shopify clients.
package shop

import (
	"context"
	"errors"
	"fmt"

	"catalog-sync-backend/internal/config"
	"catalog-sync-backend/internal/database"
	"catalog-sync-backend/internal/logging"
	"catalog-sync-backend/internal/models"
	"catalog-sync-backend/internal/secrets"
	"catalog-sync-backend/internal/shopify"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("shop does not exist")
	// ErrShopNotReady means the shop cannot accept product writes yet:
	// missing token, missing write scope, or failing API calls.
	ErrShopNotReady = errors.New("shop is not ready for product actions")
)

func ByDomain(domain string) (*models.Shop, error) {
	var s models.Shop
	err := database.DB.Where("domain = ?", domain).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, domain)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetOrCreate returns the shop for a domain, creating it with default
// settings when it does not exist yet.
func GetOrCreate(domain string) (*models.Shop, bool, error) {
	s, err := ByDomain(domain)
	if err == nil {
		return s, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	s = &models.Shop{
		Domain:            domain,
		Scopes:            models.StringList{},
		ExcludedSuppliers: models.StringList{},
		ExcludedBrands:    models.StringList{},
		ProfitMargin:      models.DefaultProfitMargin,
		Rounding:          models.DefaultRounding,
	}
	if err := database.DB.Create(s).Error; err != nil {
		return nil, false, err
	}

	LogAction(s, "shop_created", logging.LevelSuccess, models.JSONMap{
		"message": "New shop created with default settings.",
	}, "")
	return s, true, nil
}

func ReadyShops() ([]models.Shop, error) {
	var all []models.Shop
	if err := database.DB.Find(&all).Error; err != nil {
		return nil, err
	}

	ready := all[:0]
	for _, s := range all {
		if s.IsReady() {
			ready = append(ready, s)
		}
	}
	logging.L.Log("ready_shops_loaded", logging.LevelInfo, "", "", models.JSONMap{
		"count": len(ready),
	})
	return ready, nil
}

// SaveToken seals and stores a new access token with its granted scopes.
func SaveToken(cfg *config.Config, s *models.Shop, token string, scopes []string) error {
	box, err := secrets.NewBox(cfg.EncryptionSecret)
	if err != nil {
		return err
	}
	sealed, err := box.Seal(token)
	if err != nil {
		return fmt.Errorf("seal access token: %w", err)
	}

	s.AccessToken = sealed
	s.Scopes = models.StringList(scopes)
	if err := database.DB.Model(s).Updates(map[string]any{
		"access_token": s.AccessToken,
		"scopes":       s.Scopes,
	}).Error; err != nil {
		return err
	}

	LogAction(s, "access_token_saved", logging.LevelInfo, models.JSONMap{
		"message": "Access token and scopes saved.",
		"scopes":  scopes,
	}, "")
	return nil
}

func AccessToken(cfg *config.Config, s *models.Shop) (string, error) {
	if s.AccessToken == "" {
		return "", fmt.Errorf("%w: no access token stored", ErrShopNotReady)
	}
	box, err := secrets.NewBox(cfg.EncryptionSecret)
	if err != nil {
		return "", err
	}
	return box.Open(s.AccessToken)
}

// Client builds an authenticated Shopify client for the shop.
func Client(cfg *config.Config, s *models.Shop) (*shopify.Client, error) {
	token, err := AccessToken(cfg, s)
	if err != nil {
		return nil, err
	}
	return shopify.NewClient(s.Domain, token, cfg.ShopifyAPIVersion), nil
}

// Settings is the merchant-tunable subset of a shop row.
type Settings struct {
	ExcludedSuppliers []string `json:"excluded_suppliers"`
	ExcludedBrands    []string `json:"excluded_brands"`
	ProfitMargin      float64  `json:"profit_margin"`
	Rounding          float64  `json:"rounding"`
}

func CurrentSettings(s *models.Shop) Settings {
	return Settings{
		ExcludedSuppliers: s.ExcludedSuppliers,
		ExcludedBrands:    s.ExcludedBrands,
		ProfitMargin:      s.ProfitMargin,
		Rounding:          s.Rounding,
	}
}

func UpdateSettings(s *models.Shop, settings Settings) error {
	s.ExcludedSuppliers = models.StringList(settings.ExcludedSuppliers)
	s.ExcludedBrands = models.StringList(settings.ExcludedBrands)
	s.ProfitMargin = settings.ProfitMargin
	s.Rounding = settings.Rounding

	if err := database.DB.Model(s).Updates(map[string]any{
		"excluded_suppliers": s.ExcludedSuppliers,
		"excluded_brands":    s.ExcludedBrands,
		"profit_margin":      s.ProfitMargin,
		"rounding":           s.Rounding,
	}).Error; err != nil {
		return err
	}

	LogAction(s, "shop_settings_updated", logging.LevelInfo, models.JSONMap{
		"message":       "Shop settings updated.",
		"profit_margin": settings.ProfitMargin,
		"rounding":      settings.Rounding,
	}, "")
	return nil
}

func LogAction(s *models.Shop, event, level string, data models.JSONMap, taskID string) {
	logging.L.Log(event, level, s.Domain, taskID, data)
}

// IsProductEligible applies the shop's supplier and brand exclusions.
func IsProductEligible(s *models.Shop, p *models.Product) bool {
	for _, link := range p.SupplierLinks {
		if s.ExcludedSuppliers.Contains(link.SupplierName) {
			return false
		}
	}
	if brand := p.Brand(); brand != "" && s.ExcludedBrands.Contains(brand) {
		return false
	}
	return true
}

// EligibleProducts returns fully enriched products that pass the shop's
// exclusions and have no listing for it yet, plus the pre-filter count.
func EligibleProducts(s *models.Shop) ([]models.Product, int64, error) {
	var candidates []models.Product
	err := database.DB.
		Preload("SupplierLinks").
		Where("lookup_status = ? AND images_status = ? AND ai_status = ?",
			models.StatusSuccess, models.StatusSuccess, models.StatusSuccess).
		Where("NOT EXISTS (SELECT 1 FROM listings WHERE listings.product_id = products.id AND listings.shop_id = ?)", s.ID).
		Find(&candidates).Error
	if err != nil {
		return nil, 0, err
	}

	total := int64(len(candidates))
	eligible := candidates[:0]
	for i := range candidates {
		if IsProductEligible(s, &candidates[i]) {
			eligible = append(eligible, candidates[i])
		}
	}
	return eligible, total, nil
}

// Session is a shop prepared for product actions: an authenticated
// client plus the shop's collection inventory, fetched once per task.
type Session struct {
	Shop   *models.Shop
	Client *shopify.Client

	collections map[string]string
}

// Prepare verifies readiness and warms the collection cache. Returns
// ErrShopNotReady when the shop cannot be used.
func Prepare(ctx context.Context, cfg *config.Config, s *models.Shop) (*Session, error) {
	if !s.IsReady() {
		return nil, fmt.Errorf("%w: token or write_products scope missing", ErrShopNotReady)
	}

	client, err := Client(cfg, s)
	if err != nil {
		return nil, err
	}

	collections, err := client.Collections(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: collections fetch failed: %v", ErrShopNotReady, err)
	}

	byTitle := make(map[string]string, len(collections))
	for _, c := range collections {
		byTitle[c.Title] = c.ID
	}
	return &Session{Shop: s, Client: client, collections: byTitle}, nil
}

// EnsureCollection returns the GID for a collection title, creating the
// collection when the shop does not have it.
func (sess *Session) EnsureCollection(ctx context.Context, title string) (string, error) {
	if id, ok := sess.collections[title]; ok {
		return id, nil
	}
	created, err := sess.Client.CreateCollection(ctx, title)
	if err != nil {
		return "", fmt.Errorf("create collection %q: %w", title, err)
	}
	sess.collections[created.Title] = created.ID
	return created.ID, nil
}
