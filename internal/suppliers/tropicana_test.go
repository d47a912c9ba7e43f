package suppliers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<Products>
  <Product>
    <Barcode>5056555201234</Barcode>
    <ProductCode>TW-001</ProductCode>
    <TranslationName>Whey Protein Vanilla 1kg</TranslationName>
    <StockLevel>42</StockLevel>
    <Brand>Example Nutrition</Brand>
    <ProductPrice>18.50</ProductPrice>
    <FilterByCategory>Protein Powder</FilterByCategory>
  </Product>
  <Product>
    <Barcode>5056555201234</Barcode>
    <ProductCode>TW-001</ProductCode>
    <TranslationName>Whey Protein Vanilla 1kg</TranslationName>
    <StockLevel>42</StockLevel>
    <Brand>Example Nutrition</Brand>
    <ProductPrice>18.50</ProductPrice>
    <FilterByCategory>Whey Protein</FilterByCategory>
  </Product>
  <Product>
    <Barcode>5056555209999</Barcode>
    <ProductCode>TW-002</ProductCode>
    <TranslationName>Creatine Monohydrate 500g</TranslationName>
    <StockLevel>0</StockLevel>
    <Brand>Other Brand</Brand>
    <ProductPrice>9.99</ProductPrice>
    <FilterByCategory>Creatine</FilterByCategory>
  </Product>
  <Product>
    <ProductCode>NO-BARCODE</ProductCode>
    <TranslationName>Feed junk row</TranslationName>
  </Product>
</Products>`

func TestTropicanaParseFeed(t *testing.T) {
	s := NewTropicanaSupplier(nil)
	require.NoError(t, s.parseFeed(strings.NewReader(sampleFeed)))

	// Rows without a barcode are dropped, duplicates merged.
	assert.Equal(t, []string{"5056555201234", "5056555209999"}, s.Barcodes())

	p, ok := s.ProductByBarcode("5056555201234")
	require.True(t, ok)
	assert.Equal(t, "Whey Protein Vanilla 1kg", p.Name)
	assert.Equal(t, "Example Nutrition", p.Brand)
	assert.Equal(t, "TW-001", p.SKU)
	assert.Equal(t, 18.50, p.Price)
	assert.Equal(t, 42, p.StockLevel)
	assert.Equal(t, []string{"Protein Powder", "Whey Protein"}, p.Categories)
	assert.Equal(t, "5056555201234", p.Raw["Barcode"])

	out, ok := s.ProductByBarcode("5056555209999")
	require.True(t, ok)
	assert.Equal(t, 0, out.StockLevel)

	_, ok = s.ProductByBarcode("0000000000000")
	assert.False(t, ok)
}

func TestTropicanaParseFeedRejectsBrokenXML(t *testing.T) {
	s := NewTropicanaSupplier(nil)
	err := s.parseFeed(strings.NewReader("<Products><Product><Barcode>123"))
	assert.Error(t, err)
}

func TestDummySupplierFeed(t *testing.T) {
	s := NewDummySupplier()
	require.NoError(t, s.Load(t.Context()))
	assert.Len(t, s.Barcodes(), 2)

	p, ok := s.ProductByBarcode("857640006424")
	require.True(t, ok)
	assert.Equal(t, "Brand A", p.Brand)
	assert.Equal(t, 25.00, p.Price)
	assert.Equal(t, 100, p.StockLevel)
	assert.Equal(t, "XYZ123", p.Raw["product_code"])
}
