// Package shopify is a minimal Admin API client: GraphQL with rate
// limit handling, plus the OAuth pieces needed to install the app.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// GraphQLError carries userErrors or top-level errors from the Admin API.
type GraphQLError struct {
	Message string
}

func (e *GraphQLError) Error() string {
	return "shopify graphql: " + e.Message
}

type Collection struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Handle string `json:"handle"`
}

type ProductInfo struct {
	ID        string
	Handle    string
	URL       string
	VariantID string
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

type Client struct {
	domain     string
	token      string
	apiVersion string
	http       *http.Client

	// maxAttempts bounds 429 retries.
	maxAttempts int
	// endpoint overrides the Admin URL in tests.
	endpoint string
}

func NewClient(domain, token, apiVersion string) *Client {
	return &Client{
		domain:      domain,
		token:       token,
		apiVersion:  apiVersion,
		http:        &http.Client{Timeout: 15 * time.Second},
		maxAttempts: 5,
	}
}

func (c *Client) graphqlURL() string {
	if c.endpoint != "" {
		return c.endpoint
	}
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", c.domain, c.apiVersion)
}

// post executes one GraphQL document, retrying 429s with exponential
// backoff, and decodes the data payload into out.
func (c *Client) post(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	if err != nil {
		return fmt.Errorf("encode graphql request: %w", err)
	}

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL(), bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Shopify-Access-Token", c.token)

		resp, err := c.http.Do(req)
		if err != nil {
			return fmt.Errorf("shopify request: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(1<<uint(attempt)) * time.Second):
			}
			continue
		}

		var envelope struct {
			Data   json.RawMessage `json:"data"`
			Errors []struct {
				Message string `json:"message"`
			} `json:"errors"`
		}
		err = json.NewDecoder(resp.Body).Decode(&envelope)
		resp.Body.Close()
		if err != nil {
			return &GraphQLError{Message: "invalid JSON response"}
		}
		if len(envelope.Errors) > 0 {
			msgs := make([]string, len(envelope.Errors))
			for i, e := range envelope.Errors {
				msgs[i] = e.Message
			}
			return &GraphQLError{Message: strings.Join(msgs, "; ")}
		}
		if out != nil {
			if err := json.Unmarshal(envelope.Data, out); err != nil {
				return fmt.Errorf("decode graphql data: %w", err)
			}
		}
		return nil
	}

	return &GraphQLError{Message: "rate limited, retries exhausted"}
}

func userErrorsToError(errs []userError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return &GraphQLError{Message: strings.Join(msgs, "; ")}
}

// CreateProduct runs productCreate and returns the new product and
// first-variant GIDs.
func (c *Client) CreateProduct(ctx context.Context, input map[string]any) (*ProductInfo, error) {
	var out struct {
		ProductCreate struct {
			Product struct {
				ID             string `json:"id"`
				Handle         string `json:"handle"`
				OnlineStoreURL string `json:"onlineStoreUrl"`
				Variants       struct {
					Edges []struct {
						Node struct {
							ID string `json:"id"`
						} `json:"node"`
					} `json:"edges"`
				} `json:"variants"`
			} `json:"product"`
			UserErrors []userError `json:"userErrors"`
		} `json:"productCreate"`
	}

	if err := c.post(ctx, productCreateMutation, map[string]any{"input": input}, &out); err != nil {
		return nil, err
	}
	if err := userErrorsToError(out.ProductCreate.UserErrors); err != nil {
		return nil, err
	}

	info := &ProductInfo{
		ID:     out.ProductCreate.Product.ID,
		Handle: out.ProductCreate.Product.Handle,
		URL:    out.ProductCreate.Product.OnlineStoreURL,
	}
	if edges := out.ProductCreate.Product.Variants.Edges; len(edges) > 0 {
		info.VariantID = edges[0].Node.ID
	}
	return info, nil
}

// UpdateProduct runs productUpdate; input must carry the product GID.
func (c *Client) UpdateProduct(ctx context.Context, input map[string]any) error {
	var out struct {
		ProductUpdate struct {
			UserErrors []userError `json:"userErrors"`
		} `json:"productUpdate"`
	}
	if err := c.post(ctx, productUpdateMutation, map[string]any{"input": input}, &out); err != nil {
		return err
	}
	return userErrorsToError(out.ProductUpdate.UserErrors)
}

// UpdateVariant pushes price/cost/sku/barcode onto one variant.
func (c *Client) UpdateVariant(ctx context.Context, productID string, variant map[string]any) error {
	var out struct {
		ProductVariantsBulkUpdate struct {
			UserErrors []userError `json:"userErrors"`
		} `json:"productVariantsBulkUpdate"`
	}
	vars := map[string]any{"productId": productID, "variants": []map[string]any{variant}}
	if err := c.post(ctx, productVariantsBulkUpdateMutation, vars, &out); err != nil {
		return err
	}
	return userErrorsToError(out.ProductVariantsBulkUpdate.UserErrors)
}

// Collections pages through every collection on the shop.
func (c *Client) Collections(ctx context.Context) ([]Collection, error) {
	var all []Collection
	var after *string

	for {
		var out struct {
			Collections struct {
				Edges []struct {
					Node Collection `json:"node"`
				} `json:"edges"`
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
			} `json:"collections"`
		}

		vars := map[string]any{"first": 100}
		if after != nil {
			vars["after"] = *after
		}
		if err := c.post(ctx, getCollectionsQuery, vars, &out); err != nil {
			return nil, err
		}

		for _, edge := range out.Collections.Edges {
			all = append(all, edge.Node)
		}
		if !out.Collections.PageInfo.HasNextPage {
			return all, nil
		}
		cursor := out.Collections.PageInfo.EndCursor
		after = &cursor
	}
}

func (c *Client) CreateCollection(ctx context.Context, title string) (*Collection, error) {
	var out struct {
		CollectionCreate struct {
			Collection Collection  `json:"collection"`
			UserErrors []userError `json:"userErrors"`
		} `json:"collectionCreate"`
	}
	vars := map[string]any{"input": map[string]any{"title": title}}
	if err := c.post(ctx, collectionCreateMutation, vars, &out); err != nil {
		return nil, err
	}
	if err := userErrorsToError(out.CollectionCreate.UserErrors); err != nil {
		return nil, err
	}
	return &out.CollectionCreate.Collection, nil
}

func (c *Client) AddProductsToCollection(ctx context.Context, collectionID string, productIDs []string) error {
	var out struct {
		CollectionAddProducts struct {
			UserErrors []userError `json:"userErrors"`
		} `json:"collectionAddProducts"`
	}
	vars := map[string]any{"id": collectionID, "productIds": productIDs}
	if err := c.post(ctx, collectionAddProductsMutation, vars, &out); err != nil {
		return err
	}
	return userErrorsToError(out.CollectionAddProducts.UserErrors)
}

// WebhookTopics the app subscribes to on install.
var WebhookTopics = map[string]string{
	"APP_UNINSTALLED": "/webhooks/shopify/uninstalled",
}

// RegisterWebhooks subscribes the app's webhook endpoints. Returns the
// first registration error but attempts every topic.
func (c *Client) RegisterWebhooks(ctx context.Context, appBaseURL string) error {
	var firstErr error
	for topic, path := range WebhookTopics {
		var out struct {
			WebhookSubscriptionCreate struct {
				UserErrors []userError `json:"userErrors"`
			} `json:"webhookSubscriptionCreate"`
		}
		vars := map[string]any{
			"topic": topic,
			"webhookSubscription": map[string]any{
				"callbackUrl": appBaseURL + path,
				"format":      "JSON",
			},
		}
		err := c.post(ctx, webhookSubscriptionCreateMutation, vars, &out)
		if err == nil {
			err = userErrorsToError(out.WebhookSubscriptionCreate.UserErrors)
		}
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("register webhook %s: %w", topic, err)
		}
	}
	return firstErr
}
