package auth

import (
	"net/url"
	"regexp"
	"time"

	"catalog-sync-backend/internal/config"
	"catalog-sync-backend/internal/logging"
	"catalog-sync-backend/internal/models"
	"catalog-sync-backend/internal/shop"
	"catalog-sync-backend/internal/shopify"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const stateCookie = "oauth_state"

var shopDomainRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*\.myshopify\.com$`)

// InstallHandler starts the OAuth flow: validates the shop domain,
// drops a state nonce cookie and redirects to the authorize page.
func InstallHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		shopDomain := c.Query("shop")
		if !shopDomainRe.MatchString(shopDomain) {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid shop parameter")
		}

		state := uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     stateCookie,
			Value:    state,
			Expires:  time.Now().Add(10 * time.Minute),
			HTTPOnly: true,
			Secure:   !cfg.IsDev(),
			SameSite: "Lax",
		})

		redirectURI := cfg.AppBaseURL + "/auth/shopify/callback"
		return c.Redirect(shopify.InstallURL(shopDomain, cfg.ShopifyAPIKey, redirectURI, state))
	}
}

// CallbackHandler finishes the OAuth flow: verifies the HMAC and state,
// exchanges the code, persists the sealed token and registers webhooks.
func CallbackHandler(cfg *config.Config, exchanger *shopify.TokenExchanger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params, err := url.ParseQuery(string(c.Request().URI().QueryString()))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid query string")
		}

		if !shopify.VerifyCallbackHMAC(params, cfg.ShopifyAPISecret) {
			return fiber.NewError(fiber.StatusUnauthorized, "HMAC verification failed")
		}

		shopDomain := params.Get("shop")
		if !shopDomainRe.MatchString(shopDomain) {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid shop parameter")
		}

		state := params.Get("state")
		if state == "" || state != c.Cookies(stateCookie) {
			return fiber.NewError(fiber.StatusUnauthorized, "State mismatch")
		}
		c.ClearCookie(stateCookie)

		code := params.Get("code")
		if code == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Missing authorization code")
		}

		token, scopes, err := exchanger.Exchange(c.Context(), shopDomain, code)
		if err != nil {
			logging.L.Log("token_exchange_failed", logging.LevelError, shopDomain, "", models.JSONMap{
				"error": err.Error(),
			})
			return fiber.NewError(fiber.StatusBadGateway, "Token exchange failed")
		}

		s, created, err := shop.GetOrCreate(shopDomain)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not persist shop")
		}
		if err := shop.SaveToken(cfg, s, token, scopes); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Could not save access token")
		}

		if client, err := shop.Client(cfg, s); err == nil {
			if err := client.RegisterWebhooks(c.Context(), cfg.AppBaseURL); err != nil {
				logging.L.Log("webhook_registration_failed", logging.LevelWarning, shopDomain, "", models.JSONMap{
					"error": err.Error(),
				})
			}
		}

		shop.LogAction(s, "app_installed", logging.LevelSuccess, models.JSONMap{
			"scopes":   scopes,
			"new_shop": created,
		}, "")

		return c.Redirect("https://" + shopDomain + "/admin/apps")
	}
}
