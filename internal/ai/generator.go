// Package ai generates storefront listing copy from raw supplier and
// barcode-lookup data using the GenAI API with a fixed response schema.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"catalog-sync-backend/internal/config"

	"google.golang.org/genai"
)

const systemPrompt = `You are an expert product copywriter for a fun and casual UK-based sports nutrition brand. You will be provided with raw supplier data and a barcode lookup result. Use this to generate storefront listing content for the product.

===STORE DESCRIPTION===
My store 'Shredded Treat' is a sports supplements store selling a wide range of products including protein powders, protein shakes, weight loss aids, protein bars, BCAAs, creatine, protein snacks, protein treats, mass gainers, low calorie treats among many other things.
We cater for a wide range of customers from gym newbies to hardcore body builders, you can usually tell which product is aimed at which end of the scale from the way it is described.
We are a fun, casual brand and like our listings to be fun as well as informative.
Start by relating the product to the customer, and how the products primary benefit is of use to them and the problem it solves.
Talk about why this specific product and brand is a good choice of this type of product.
If describing a specific flavour, we try to be super descriptive with things such as "imagine the taste of your grandma's warm apple pie on a cold winter morning" or "the smell of walking into a bakery when a fresh batch of bread has just been taken out of the oven". Do not use these examples directly but it gives you an idea of what we strive for.
Finish with a bullet point list of this product's benefits using emoji bullets.
===END STORE DESCRIPTION===`

// Minimum gap between model calls.
const rateLimitDelay = 1500 * time.Millisecond

// Cost per 1k tokens by model. Unknown models fall back to the default.
var pricing = map[string]struct{ input, output float64 }{
	"gemini-2.0-flash": {input: 0.0001, output: 0.0004},
	"gemini-1.5-pro":   {input: 0.00125, output: 0.005},
}

const defaultPricingModel = "gemini-2.0-flash"

type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Cost returns the call cost in USD for the given model.
func (u Usage) Cost(model string) float64 {
	p, ok := pricing[model]
	if !ok {
		p = pricing[defaultPricingModel]
	}
	return float64(u.InputTokens)/1000*p.input + float64(u.OutputTokens)/1000*p.output
}

type Generator struct {
	client *genai.Client
	model  string
	dummy  bool

	mu       sync.Mutex
	lastCall time.Time
}

func NewGenerator(ctx context.Context, cfg *config.Config) (*Generator, error) {
	g := &Generator{model: cfg.GenAIModel, dummy: cfg.UseDummyData}
	if g.dummy {
		return g, nil
	}

	if cfg.GenAIAPIKey == "" {
		return nil, fmt.Errorf("GENAI_API_KEY is required for AI enrichment")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.GenAIAPIKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	g.client = client
	return g, nil
}

// Generate produces listing copy for one product from its barcode
// lookup result and raw supplier rows.
func (g *Generator) Generate(ctx context.Context, barcode string, lookup map[string]any, supplierRows []map[string]any) (*Listing, Usage, error) {
	if g.dummy {
		return dummyListing(barcode, lookup), Usage{}, nil
	}

	prompt, err := buildPrompt(lookup, supplierRows)
	if err != nil {
		return nil, Usage{}, err
	}

	g.throttle()

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.7),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    listingSchema(),
		},
	)
	if err != nil {
		return nil, Usage{}, fmt.Errorf("generate listing for %s: %w", barcode, err)
	}

	var listing Listing
	if err := json.Unmarshal([]byte(resp.Text()), &listing); err != nil {
		return nil, Usage{}, fmt.Errorf("decode listing for %s: %w", barcode, err)
	}

	var usage Usage
	if resp.UsageMetadata != nil {
		usage.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		usage.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return &listing, usage, nil
}

func buildPrompt(lookup map[string]any, supplierRows []map[string]any) (string, error) {
	input, err := json.MarshalIndent(map[string]any{
		"barcode_lookup_data": lookup,
		"supplier_data":       supplierRows,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode prompt input: %w", err)
	}
	return fmt.Sprintf("Generate storefront listing content based on the following JSON input:\n%s\n\nUse British English.", input), nil
}

func (g *Generator) throttle() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if wait := rateLimitDelay - time.Since(g.lastCall); wait > 0 {
		time.Sleep(wait)
	}
	g.lastCall = time.Now()
}

func dummyListing(barcode string, lookup map[string]any) *Listing {
	title, _ := lookup["title"].(string)
	if title == "" {
		title = "Dummy Product " + barcode
	}
	return &Listing{
		Title:             title,
		Description:       "<h3>The ultimate throwback flavour for grown-up gains</h3><p>Canned listing copy for local development.</p>",
		Snippet:           "A nostalgic, high-protein shake for everyday training.",
		ProductType:       "Protein Powder",
		PrimaryCollection: "Protein Powders",
		Tags:              []string{"protein", "dummy"},
		SEOTitle:          title,
		SEODescription:    "Canned SEO description used when USE_DUMMY_DATA is enabled.",
	}
}
