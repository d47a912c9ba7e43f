package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"catalog-sync-backend/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func oauthConfig() *config.Config {
	return &config.Config{
		Environment:      "development",
		AppBaseURL:       "https://app.example.com",
		ShopifyAPIKey:    "api-key",
		ShopifyAPISecret: "api-secret",
	}
}

func authApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.SendStatus(fiber.StatusInternalServerError)
		},
	})
	app.Get("/auth/shopify/install", InstallHandler(cfg))
	app.Get("/auth/shopify/callback", CallbackHandler(cfg, nil))
	return app
}

func signQuery(params url.Values, secret string) string {
	var parts []string
	for k, vs := range params {
		for _, v := range vs {
			parts = append(parts, k+"="+v)
		}
	}
	sort.Strings(parts)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(parts, "&")))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestInstallRedirectsToAuthorize(t *testing.T) {
	app := authApp(oauthConfig())

	req := httptest.NewRequest(http.MethodGet, "/auth/shopify/install?shop=example.myshopify.com", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusFound, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "example.myshopify.com", loc.Host)
	assert.Equal(t, "/admin/oauth/authorize", loc.Path)
	assert.Equal(t, "api-key", loc.Query().Get("client_id"))
	assert.Equal(t, "https://app.example.com/auth/shopify/callback", loc.Query().Get("redirect_uri"))

	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	var found bool
	for _, c := range resp.Cookies() {
		if c.Name == stateCookie {
			found = true
			assert.Equal(t, state, c.Value)
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, found, "state cookie not set")
}

func TestInstallRejectsBadShopDomains(t *testing.T) {
	app := authApp(oauthConfig())

	for _, shop := range []string{"", "not-a-shop", "evil.com", "https://x.myshopify.com"} {
		req := httptest.NewRequest(http.MethodGet, "/auth/shopify/install?shop="+url.QueryEscape(shop), nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "shop %q", shop)
	}
}

func TestCallbackRejectsBadHMAC(t *testing.T) {
	app := authApp(oauthConfig())

	params := url.Values{}
	params.Set("shop", "example.myshopify.com")
	params.Set("code", "abc")
	params.Set("state", "nonce")
	params.Set("hmac", "deadbeef")

	req := httptest.NewRequest(http.MethodGet, "/auth/shopify/callback?"+params.Encode(), nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCallbackRejectsStateMismatch(t *testing.T) {
	cfg := oauthConfig()
	app := authApp(cfg)

	params := url.Values{}
	params.Set("shop", "example.myshopify.com")
	params.Set("code", "abc")
	params.Set("state", "nonce")
	params.Set("hmac", signQuery(params, cfg.ShopifyAPISecret))

	// Signed correctly, but the browser carries a different state cookie.
	req := httptest.NewRequest(http.MethodGet, "/auth/shopify/callback?"+params.Encode(), nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "other-nonce"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCallbackRequiresCode(t *testing.T) {
	cfg := oauthConfig()
	app := authApp(cfg)

	params := url.Values{}
	params.Set("shop", "example.myshopify.com")
	params.Set("state", "nonce")
	params.Set("hmac", signQuery(params, cfg.ShopifyAPISecret))

	req := httptest.NewRequest(http.MethodGet, "/auth/shopify/callback?"+params.Encode(), nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "nonce"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
