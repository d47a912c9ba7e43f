package ai

import "google.golang.org/genai"

// ProductTypes and PrimaryCollections are the closed vocabularies the
// model must pick from when categorizing a product.
var ProductTypes = []string{
	"Protein Powder", "Protein Bar", "Protein Snack", "Pre Workout",
	"Intra Workout", "Post Workout", "Creatine", "BCAA", "EAA",
	"Mass Gainer", "Weight Loss", "Vegan Supplement", "Vitamin",
	"Mineral", "Health Supplement", "Clothing", "Meal Replacement",
	"Energy Supplement", "Superfood", "Nut Butter", "Accessory",
}

var PrimaryCollections = []string{
	"Protein Powders", "Protein Bars", "Protein Snacks", "Pre Workout",
	"Intra Workout", "Post Workout", "Creatine", "BCAA", "EAA",
	"Mass Gainers", "Weight Loss", "Vegan Supplements",
	"Low Calorie Treats", "Hydration", "Vitamins", "Minerals",
	"Health Supplements", "Clothing", "Meal Replacements",
	"Energy Supplements", "Superfoods", "Nut Butters", "Accessories",
}

type NutritionalFact struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
	Unit   string  `json:"unit"`
}

// Listing is the structured output contract for generated listing copy.
type Listing struct {
	Title                string            `json:"title"`
	Description          string            `json:"description"`
	Snippet              string            `json:"snippet"`
	ProductType          string            `json:"product_type"`
	PrimaryCollection    string            `json:"primary_collection"`
	SecondaryCollections []string          `json:"secondary_collections,omitempty"`
	SuggestedUse         string            `json:"suggested_use,omitempty"`
	Ingredients          []string          `json:"ingredients,omitempty"`
	NutritionalFacts     []NutritionalFact `json:"nutritional_facts,omitempty"`
	Tags                 []string          `json:"tags"`
	SEOTitle             string            `json:"seo_title"`
	SEODescription       string            `json:"seo_description"`
	SEOKeywords          []string          `json:"seo_keywords,omitempty"`
}

// Collections returns primary plus secondary collections, primary first.
func (l *Listing) Collections() []string {
	out := make([]string, 0, 1+len(l.SecondaryCollections))
	if l.PrimaryCollection != "" {
		out = append(out, l.PrimaryCollection)
	}
	for _, c := range l.SecondaryCollections {
		if c != l.PrimaryCollection {
			out = append(out, c)
		}
	}
	return out
}

// listingSchema constrains model output so responses always unmarshal
// into Listing.
func listingSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {
				Type:        genai.TypeString,
				Description: "Main product title including brand, product type, name and packaging size",
			},
			"description": {
				Type:        genai.TypeString,
				Description: "HTML formatted full product description. Must not mention expiry dates.",
			},
			"snippet": {
				Type:        genai.TypeString,
				Description: "Short, snappy summary suitable for landing pages",
			},
			"product_type": {
				Type: genai.TypeString,
				Enum: ProductTypes,
			},
			"primary_collection": {
				Type: genai.TypeString,
				Enum: PrimaryCollections,
			},
			"secondary_collections": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"suggested_use": {
				Type:        genai.TypeString,
				Description: "How the product should be used or consumed, if known",
			},
			"ingredients": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"nutritional_facts": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"type":   {Type: genai.TypeString},
						"amount": {Type: genai.TypeNumber},
						"unit":   {Type: genai.TypeString},
					},
					Required: []string{"type", "amount", "unit"},
				},
			},
			"tags": {
				Type:        genai.TypeArray,
				Items:       &genai.Schema{Type: genai.TypeString},
				Description: "Lowercase or slug-formatted tags: brand, product type, related search terms",
			},
			"seo_title": {
				Type:        genai.TypeString,
				Description: "Meta title for search engines, max 60 characters",
			},
			"seo_description": {
				Type:        genai.TypeString,
				Description: "Meta description for search engines, max 160 characters",
			},
			"seo_keywords": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{
			"title", "description", "snippet", "product_type",
			"primary_collection", "tags", "seo_title", "seo_description",
		},
	}
}
