package suppliers

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"catalog-sync-backend/internal/config"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// TropicanaSupplier reads the Tropicana Wholesale XML feed over SFTP.
// Entries sharing a barcode are merged, accumulating their categories.
type TropicanaSupplier struct {
	cfg      *config.Config
	products map[string]FeedProduct
	order    []string
}

func NewTropicanaSupplier(cfg *config.Config) *TropicanaSupplier {
	return &TropicanaSupplier{cfg: cfg, products: make(map[string]FeedProduct)}
}

func (s *TropicanaSupplier) Name() string { return "Tropicana Wholesale" }

func (s *TropicanaSupplier) Load(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.TropicanaSFTPHost, s.cfg.TropicanaSFTPPort)
	sshCfg := &ssh.ClientConfig{
		User:            s.cfg.TropicanaSFTPUsername,
		Auth:            []ssh.AuthMethod{ssh.Password(s.cfg.TropicanaSFTPPassword)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	conn, err := ssh.Dial("tcp", addr, sshCfg)
	if err != nil {
		return fmt.Errorf("sftp dial %s: %w", addr, err)
	}
	defer conn.Close()

	client, err := sftp.NewClient(conn)
	if err != nil {
		return fmt.Errorf("sftp session: %w", err)
	}
	defer client.Close()

	f, err := client.Open(s.cfg.TropicanaSFTPPath)
	if err != nil {
		return fmt.Errorf("open feed %s: %w", s.cfg.TropicanaSFTPPath, err)
	}
	defer f.Close()

	return s.parseFeed(f)
}

func (s *TropicanaSupplier) Barcodes() []string {
	return append([]string(nil), s.order...)
}

func (s *TropicanaSupplier) ProductByBarcode(barcode string) (FeedProduct, bool) {
	p, ok := s.products[barcode]
	return p, ok
}

// parseFeed walks <Product> elements, keeping every child tag as raw
// data and pulling the known fields into the parsed form.
func (s *TropicanaSupplier) parseFeed(r io.Reader) error {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("parse feed: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Product" {
			continue
		}

		raw, err := decodeElementFields(dec, start)
		if err != nil {
			return fmt.Errorf("parse product element: %w", err)
		}
		s.addEntry(raw)
	}
	return nil
}

func (s *TropicanaSupplier) addEntry(raw map[string]any) {
	barcode := textField(raw, "Barcode")
	if barcode == "" {
		return
	}

	stockLevel, _ := strconv.Atoi(textField(raw, "StockLevel"))
	price, _ := strconv.ParseFloat(textField(raw, "ProductPrice"), 64)
	category := textField(raw, "FilterByCategory")

	existing, ok := s.products[barcode]
	if ok {
		if category != "" && !containsString(existing.Categories, category) {
			existing.Categories = append(existing.Categories, category)
			s.products[barcode] = existing
		}
		return
	}

	p := FeedProduct{
		Barcode:    barcode,
		Name:       textField(raw, "TranslationName"),
		Brand:      textField(raw, "Brand"),
		SKU:        textField(raw, "ProductCode"),
		Price:      price,
		StockLevel: stockLevel,
		Raw:        raw,
	}
	if category != "" {
		p.Categories = []string{category}
	}
	s.products[barcode] = p
	s.order = append(s.order, barcode)
}

// decodeElementFields flattens the direct children of an element into a
// tag -> text map.
func decodeElementFields(dec *xml.Decoder, start xml.StartElement) (map[string]any, error) {
	fields := make(map[string]any)
	var currentTag string
	var text strings.Builder

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			currentTag = t.Name.Local
			text.Reset()
		case xml.CharData:
			if currentTag != "" {
				text.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return fields, nil
			}
			if currentTag == t.Name.Local {
				fields[currentTag] = strings.TrimSpace(text.String())
				currentTag = ""
			}
		}
	}
}

func textField(raw map[string]any, key string) string {
	if v, ok := raw[key].(string); ok {
		return v
	}
	return ""
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
