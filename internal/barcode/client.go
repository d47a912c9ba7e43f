// Package barcode queries the barcodelookup.com product API.
package barcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"catalog-sync-backend/internal/cache"
	"catalog-sync-backend/internal/config"
	"catalog-sync-backend/internal/logging"
	"catalog-sync-backend/internal/models"
)

const DefaultBaseURL = "https://api.barcodelookup.com/v3/products"

// The API allows 40 requests per minute.
const (
	maxRequestsPerMinute = 40
	requestInterval      = time.Minute / maxRequestsPerMinute
)

// ErrNotFound means the API answered but knows nothing about the barcode.
var ErrNotFound = errors.New("no product found for barcode")

type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	cache   *cache.Cache
	dummy   bool

	retries    int
	retryDelay time.Duration
	interval   time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		apiKey:     cfg.BarcodeLookupAPIKey,
		baseURL:    DefaultBaseURL,
		http:       &http.Client{Timeout: 15 * time.Second},
		cache:      cache.New("barcode_lookup::", cfg.EnableBarcodeCache),
		dummy:      cfg.UseDummyData,
		retries:    3,
		retryDelay: 2 * time.Second,
		interval:   requestInterval,
	}
}

// Lookup fetches product data for a barcode, honoring the cache, the
// rate budget, and retrying transport failures with exponential backoff.
func (c *Client) Lookup(ctx context.Context, barcode string) (models.JSONMap, error) {
	if cached, err := c.cache.Get(barcode); err == nil && cached != nil {
		logging.L.Log("barcode_lookup_cache_hit", logging.LevelInfo, "", "", models.JSONMap{"barcode": barcode})
		return cached, nil
	}

	if c.dummy {
		return dummyLookup(barcode), nil
	}

	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		c.throttle()

		data, err := c.fetch(ctx, barcode)
		if err == nil {
			if cerr := c.cache.Set(barcode, data); cerr != nil {
				logging.L.Log("barcode_lookup_cache_write_failed", logging.LevelWarning, "", "", models.JSONMap{
					"barcode": barcode, "error": cerr.Error(),
				})
			}
			return data, nil
		}
		if errors.Is(err, ErrNotFound) || ctx.Err() != nil {
			return nil, err
		}

		lastErr = err
		logging.L.Log("barcode_lookup_error", logging.LevelError, "", "", models.JSONMap{
			"barcode": barcode,
			"error":   err.Error(),
			"attempt": attempt + 1,
		})

		// Exponential backoff with jitter to avoid a thundering herd.
		backoff := c.retryDelay*(1<<uint(attempt+1)) + time.Duration(rand.Int63n(int64(time.Second)))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("barcode lookup for %s exhausted retries: %w", barcode, lastErr)
}

func (c *Client) fetch(ctx context.Context, barcode string) (models.JSONMap, error) {
	q := url.Values{}
	q.Set("barcode", barcode)
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("barcode lookup status %d: %s", resp.StatusCode, body)
	}

	var parsed struct {
		Products []models.JSONMap `json:"products"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode barcode lookup response: %w", err)
	}
	if len(parsed.Products) == 0 {
		return nil, ErrNotFound
	}
	return parsed.Products[0], nil
}

func (c *Client) throttle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if wait := c.interval - time.Since(c.lastCall); wait > 0 {
		time.Sleep(wait)
	}
	c.lastCall = time.Now()
}

func dummyLookup(barcode string) models.JSONMap {
	return models.JSONMap{
		"barcode_number": barcode,
		"title":          "Ghost Whey Protein 26 Servings, Milk Chocolate",
		"brand":          "Ghost",
		"description":    "Premium whey protein with unbeatable flavor.",
		"ingredients":    "Whey protein isolate, cocoa, natural flavors.",
		"weight":         "900g",
		"images": []any{
			"https://images.barcodelookup.com/1033/10337665-1.jpg",
		},
	}
}
