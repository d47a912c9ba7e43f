package webhooks

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http/httptest"
	"strings"
	"testing"

	"catalog-sync-backend/internal/config"
	"catalog-sync-backend/internal/database"
	"catalog-sync-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestVerifyPayload(t *testing.T) {
	body := []byte(`{"id":123}`)
	secret := "api-secret"

	assert.True(t, VerifyPayload(body, sign(body, secret), secret))
	assert.False(t, VerifyPayload(body, sign(body, "other"), secret))
	assert.False(t, VerifyPayload([]byte(`{"id":124}`), sign(body, secret), secret))
	assert.False(t, VerifyPayload(body, "", secret))
}

func TestUninstalledHandler(t *testing.T) {
	setupTestDB(t)
	cfg := &config.Config{ShopifyAPISecret: "api-secret"}

	s := models.Shop{Domain: "example.myshopify.com", AccessToken: "sealed"}
	require.NoError(t, database.DB.Create(&s).Error)
	require.NoError(t, database.DB.Create(&models.LogEntry{
		Event: "listing_created", Level: "success", Store: s.Domain,
	}).Error)
	require.NoError(t, database.DB.Create(&models.LogEntry{
		Event: "listing_created", Level: "success", Store: "other.myshopify.com",
	}).Error)

	app := fiber.New()
	app.Post("/webhooks/shopify/uninstalled", UninstalledHandler(cfg))

	body := `{"id":1}`
	req := httptest.NewRequest(fiber.MethodPost, "/webhooks/shopify/uninstalled", strings.NewReader(body))
	req.Header.Set("X-Shopify-Hmac-Sha256", sign([]byte(body), "api-secret"))
	req.Header.Set("X-Shopify-Shop-Domain", s.Domain)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var shops int64
	database.DB.Model(&models.Shop{}).Where("domain = ?", s.Domain).Count(&shops)
	assert.Zero(t, shops)

	// Only the uninstalled shop's logs go; other shops keep theirs.
	var logs int64
	database.DB.Model(&models.LogEntry{}).Where("store = ?", s.Domain).Count(&logs)
	assert.Zero(t, logs)
	database.DB.Model(&models.LogEntry{}).Where("store = ?", "other.myshopify.com").Count(&logs)
	assert.Equal(t, int64(1), logs)
}

func TestUninstalledHandlerRejectsBadHMAC(t *testing.T) {
	setupTestDB(t)
	cfg := &config.Config{ShopifyAPISecret: "api-secret"}

	s := models.Shop{Domain: "example.myshopify.com"}
	require.NoError(t, database.DB.Create(&s).Error)

	app := fiber.New()
	app.Post("/webhooks/shopify/uninstalled", UninstalledHandler(cfg))

	body := `{"id":1}`
	req := httptest.NewRequest(fiber.MethodPost, "/webhooks/shopify/uninstalled", strings.NewReader(body))
	req.Header.Set("X-Shopify-Hmac-Sha256", sign([]byte(body), "wrong-secret"))
	req.Header.Set("X-Shopify-Shop-Domain", s.Domain)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	var shops int64
	database.DB.Model(&models.Shop{}).Where("domain = ?", s.Domain).Count(&shops)
	assert.Equal(t, int64(1), shops)
}

func TestUninstalledHandlerUnknownShop(t *testing.T) {
	setupTestDB(t)
	cfg := &config.Config{ShopifyAPISecret: "api-secret"}

	app := fiber.New()
	app.Post("/webhooks/shopify/uninstalled", UninstalledHandler(cfg))

	body := `{"id":1}`
	req := httptest.NewRequest(fiber.MethodPost, "/webhooks/shopify/uninstalled", strings.NewReader(body))
	req.Header.Set("X-Shopify-Hmac-Sha256", sign([]byte(body), "api-secret"))
	req.Header.Set("X-Shopify-Shop-Domain", "gone.myshopify.com")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
