package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Environment string
	HTTPPort    string
	DatabaseDSN string
	AppBaseURL  string

	ShopifyAPIKey     string
	ShopifyAPISecret  string
	ShopifyAPIVersion string

	EncryptionSecret string

	BarcodeLookupAPIKey string
	EnableBarcodeCache  bool

	GenAIAPIKey   string
	GenAIModel    string
	EnableAICache bool

	BunnyRegion          string
	BunnyStorageZoneName string
	BunnyAccessKey       string

	TropicanaSFTPHost     string
	TropicanaSFTPPort     int
	TropicanaSFTPUsername string
	TropicanaSFTPPassword string
	TropicanaSFTPPath     string

	UseDummyData bool
}

func (c *Config) IsDev() bool {
	return c.Environment == "development"
}

func Load() *Config {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "production"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		DatabaseDSN: getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=catalog port=5432 sslmode=disable"),
		AppBaseURL:  getEnv("APP_BASE_URL", "http://localhost:8080"),

		ShopifyAPIKey:     getEnv("SHOPIFY_API_KEY", ""),
		ShopifyAPISecret:  getEnv("SHOPIFY_API_SECRET", ""),
		ShopifyAPIVersion: getEnv("SHOPIFY_API_VERSION", "2025-01"),

		EncryptionSecret: getEnv("ENCRYPTION_SECRET", ""),

		BarcodeLookupAPIKey: getEnv("BARCODELOOKUP_API_KEY", ""),
		EnableBarcodeCache:  getEnvBool("ENABLE_BARCODELOOKUP_CACHE", false),

		GenAIAPIKey:   getEnv("GENAI_API_KEY", ""),
		GenAIModel:    getEnv("GENAI_MODEL", "gemini-2.0-flash"),
		EnableAICache: getEnvBool("ENABLE_AI_CACHE", false),

		BunnyRegion:          getEnv("BUNNY_REGION", ""),
		BunnyStorageZoneName: getEnv("BUNNY_STORAGE_ZONE_NAME", ""),
		BunnyAccessKey:       getEnv("BUNNY_ACCESS_KEY", ""),

		TropicanaSFTPHost:     getEnv("TROPICANA_SFTP_HOST", ""),
		TropicanaSFTPPort:     getEnvInt("TROPICANA_SFTP_PORT", 22),
		TropicanaSFTPUsername: getEnv("TROPICANA_SFTP_USERNAME", ""),
		TropicanaSFTPPassword: getEnv("TROPICANA_SFTP_PASSWORD", ""),
		TropicanaSFTPPath:     getEnv("TROPICANA_SFTP_PATH", ""),

		UseDummyData: getEnvBool("USE_DUMMY_DATA", false),
	}

	if cfg.EncryptionSecret == "" {
		log.Fatal("[FATAL] ENCRYPTION_SECRET is not set. Access tokens cannot be stored without it.")
	}
	if len(cfg.EncryptionSecret) < 32 {
		log.Fatal("[FATAL] ENCRYPTION_SECRET must be at least 32 characters.")
	}
	if !cfg.IsDev() {
		if cfg.ShopifyAPIKey == "" || cfg.ShopifyAPISecret == "" {
			log.Fatal("[FATAL] SHOPIFY_API_KEY and SHOPIFY_API_SECRET are required outside development.")
		}
	}
	if cfg.UseDummyData {
		log.Println("[WARN] USE_DUMMY_DATA is enabled, external lookups return canned data.")
	}

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
