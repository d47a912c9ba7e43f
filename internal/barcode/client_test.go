package barcode

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catalog-sync-backend/internal/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	return &Client{
		apiKey:     "test-key",
		baseURL:    baseURL,
		http:       &http.Client{Timeout: 5 * time.Second},
		cache:      cache.New("barcode_lookup::", false),
		retries:    3,
		retryDelay: time.Millisecond,
		interval:   0,
	}
}

func TestLookupReturnsFirstProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "5056555201234", r.URL.Query().Get("barcode"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Write([]byte(`{"products":[{"title":"Whey Protein","brand":"Example"},{"title":"ignored"}]}`))
	}))
	defer srv.Close()

	data, err := testClient(srv.URL).Lookup(t.Context(), "5056555201234")
	require.NoError(t, err)
	assert.Equal(t, "Whey Protein", data["title"])
	assert.Equal(t, "Example", data["brand"])
}

func TestLookupNotFound(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"404 response", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}},
		{"empty products array", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"products":[]}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := testClient(srv.URL).Lookup(t.Context(), "0000000000000")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLookupRetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"products":[{"title":"Recovered"}]}`))
	}))
	defer srv.Close()

	data, err := testClient(srv.URL).Lookup(t.Context(), "5056555201234")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, "Recovered", data["title"])
}

func TestLookupExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Lookup(t.Context(), "5056555201234")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestDummyLookup(t *testing.T) {
	c := testClient("http://unreachable.invalid")
	c.dummy = true

	data, err := c.Lookup(t.Context(), "857640006424")
	require.NoError(t, err)
	assert.Equal(t, "857640006424", data["barcode_number"])
	assert.NotEmpty(t, data["title"])
}
