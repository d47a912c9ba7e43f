package auth

import (
	"fmt"
	"strings"

	"catalog-sync-backend/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const CtxShopDomainKey = "shop_domain"

// SessionClaims are the claims of a Shopify App Bridge session token.
// dest carries "https://<shop-domain>", aud must equal the app API key.
type SessionClaims struct {
	Dest string `json:"dest"`
	jwt.RegisteredClaims
}

// ShopDomain strips the scheme from the dest claim.
func (c *SessionClaims) ShopDomain() string {
	return strings.TrimPrefix(c.Dest, "https://")
}

// SessionMiddleware verifies the embedded app's session token and puts
// the shop domain into locals.
func SessionMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization header missing")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return fiber.NewError(fiber.StatusUnauthorized, "Authorization must be 'Bearer <token>'")
		}

		claims, err := ParseSessionToken(parts[1], cfg.ShopifyAPIKey, cfg.ShopifyAPISecret)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired session token")
		}

		c.Locals(CtxShopDomainKey, claims.ShopDomain())
		return c.Next()
	}
}

// ParseSessionToken validates signature, expiry and audience.
func ParseSessionToken(tokenStr, apiKey, apiSecret string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return []byte(apiSecret), nil
	}, jwt.WithAudience(apiKey))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}
	if claims.Dest == "" {
		return nil, fmt.Errorf("session token missing dest claim")
	}
	return claims, nil
}
