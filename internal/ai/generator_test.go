package ai

import (
	"encoding/json"
	"strings"
	"testing"

	"catalog-sync-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollections(t *testing.T) {
	l := &Listing{
		PrimaryCollection:    "Protein Powders",
		SecondaryCollections: []string{"Vegan Supplements", "Protein Powders", "Weight Loss"},
	}
	assert.Equal(t, []string{"Protein Powders", "Vegan Supplements", "Weight Loss"}, l.Collections())

	empty := &Listing{}
	assert.Empty(t, empty.Collections())
}

func TestUsageCost(t *testing.T) {
	u := Usage{InputTokens: 2000, OutputTokens: 500}

	assert.InDelta(t, 2000.0/1000*0.0001+500.0/1000*0.0004, u.Cost("gemini-2.0-flash"), 1e-9)
	assert.InDelta(t, 2000.0/1000*0.00125+500.0/1000*0.005, u.Cost("gemini-1.5-pro"), 1e-9)

	// Unknown models fall back to the default pricing.
	assert.Equal(t, u.Cost("gemini-2.0-flash"), u.Cost("some-future-model"))
}

func TestDummyGenerator(t *testing.T) {
	g, err := NewGenerator(t.Context(), &config.Config{UseDummyData: true, GenAIModel: "gemini-2.0-flash"})
	require.NoError(t, err)

	listing, usage, err := g.Generate(t.Context(), "857640006424",
		map[string]any{"title": "Ghost Whey Protein"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Ghost Whey Protein", listing.Title)
	assert.Contains(t, ProductTypes, listing.ProductType)
	assert.Contains(t, PrimaryCollections, listing.PrimaryCollection)
	assert.Zero(t, usage.Cost("gemini-2.0-flash"))
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	_, err := NewGenerator(t.Context(), &config.Config{GenAIModel: "gemini-2.0-flash"})
	assert.Error(t, err)
}

func TestBuildPrompt(t *testing.T) {
	prompt, err := buildPrompt(
		map[string]any{"title": "Whey Protein", "brand": "Example"},
		[]map[string]any{{"ProductPrice": "18.50"}},
	)
	require.NoError(t, err)

	assert.Contains(t, prompt, "barcode_lookup_data")
	assert.Contains(t, prompt, "supplier_data")
	assert.Contains(t, prompt, "Use British English.")
	assert.True(t, strings.Contains(prompt, `"ProductPrice": "18.50"`))
}

func TestListingSchemaCoversContract(t *testing.T) {
	schema := listingSchema()

	raw, err := json.Marshal(Listing{Tags: []string{}, SecondaryCollections: []string{}})
	require.NoError(t, err)
	var asMap map[string]any
	require.NoError(t, json.Unmarshal(raw, &asMap))

	// Every field the struct serializes must be described in the schema.
	for field := range asMap {
		assert.Contains(t, schema.Properties, field)
	}
	for _, field := range schema.Required {
		assert.Contains(t, schema.Properties, field)
	}
}
