// Package images mirrors source product images onto Bunny CDN storage.
package images

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	// Decoders for the formats supplier image hosts actually serve.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"catalog-sync-backend/internal/config"
)

// Bunny storage rejects anything else with a 401/400, so cap downloads
// at a sane product-image size.
const maxImageBytes = 20 << 20

type Uploader struct {
	storageURL string
	pullZone   string
	accessKey  string
	http       *http.Client
	dummy      bool
}

func NewUploader(cfg *config.Config) *Uploader {
	return &Uploader{
		storageURL: fmt.Sprintf("https://%s.storage.bunnycdn.com/%s/sn/product_images", cfg.BunnyRegion, cfg.BunnyStorageZoneName),
		pullZone:   fmt.Sprintf("https://%s.b-cdn.net/sn/product_images", cfg.BunnyStorageZoneName),
		accessKey:  cfg.BunnyAccessKey,
		http:       &http.Client{Timeout: 30 * time.Second},
		dummy:      cfg.UseDummyData,
	}
}

// Mirror downloads one source image, validates it decodes as an actual
// image, and uploads it to storage. Returns the public CDN URL.
func (u *Uploader) Mirror(ctx context.Context, barcode, sourceURL string, index int) (string, error) {
	filename := fmt.Sprintf("%s_%d.jpg", barcode, index)

	if u.dummy {
		return fmt.Sprintf("%s/%s/%s", u.pullZone, barcode, filename), nil
	}

	data, err := u.download(ctx, sourceURL)
	if err != nil {
		return "", err
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("source is not a decodable image: %w", err)
	}

	uploadURL := fmt.Sprintf("%s/%s/%s", u.storageURL, barcode, filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("AccessKey", u.accessKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := u.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("bunny upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("bunny upload status %d: %s", resp.StatusCode, body)
	}

	return fmt.Sprintf("%s/%s/%s", u.pullZone, barcode, filename), nil
}

func (u *Uploader) download(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := u.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("unexpected content type %q", ct)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}
	return data, nil
}
