package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsPayload = `{
  "data": {
    "products": {
      "edges": [
        {"node": {
          "title": "Kupa",
          "descriptionHtml": "<p>Seramik kupa</p>",
          "handle": "kupa",
          "updatedAt": "2024-03-05T10:20:30Z",
          "productType": "Mutfak",
          "tags": ["seramik", "hediye"],
          "images": {"edges": [{"node": {"url": "https://cdn.example.com/a.jpg"}}, {"node": {"url": "https://cdn.example.com/b.jpg"}}]},
          "variants": {"edges": [{"node": {"price": "149.90"}}, {"node": {"price": "199.90"}}]}
        }},
        {"node": {
          "title": "Tabak",
          "handle": "tabak",
          "updatedAt": "2024-03-01T08:00:00Z",
          "tags": [],
          "images": {"edges": []},
          "variants": {"edges": []}
        }}
      ]
    }
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(Options{
		Domain:      strings.TrimPrefix(server.URL, "https://"),
		AccessToken: "shpat_test",
		HTTPClient:  server.Client(),
		UserAgent:   "Shopify-RSS/test",
	})

	return client, server
}

func TestClient_FetchProducts_Success(t *testing.T) {
	var gotRequest graphQLRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/api/"+DefaultAPIVersion+"/graphql.json", r.URL.Path)
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
		assert.Equal(t, "Shopify-RSS/test", r.Header.Get("User-Agent"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &gotRequest))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(productsPayload))
	})

	products, err := client.FetchProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, float64(MaxPageSize), gotRequest.Variables["first"])
	assert.Equal(t, activeProductsFilter, gotRequest.Variables["query"])

	first := products[0]
	assert.Equal(t, "Kupa", first.Title)
	assert.Equal(t, "<p>Seramik kupa</p>", first.DescriptionHTML)
	assert.Equal(t, "kupa", first.Handle)
	assert.Equal(t, time.Date(2024, 3, 5, 10, 20, 30, 0, time.UTC), first.UpdatedAt.UTC())
	assert.Equal(t, "Mutfak", first.ProductType)
	assert.Equal(t, "seramik, hediye", first.Tags)
	assert.Equal(t, []Image{{URL: "https://cdn.example.com/a.jpg"}, {URL: "https://cdn.example.com/b.jpg"}}, first.Images)
	assert.Equal(t, []Variant{{Price: "149.90"}, {Price: "199.90"}}, first.Variants)

	second := products[1]
	assert.Equal(t, "Tabak", second.Title)
	assert.Empty(t, second.DescriptionHTML)
	assert.Empty(t, second.Tags)
	assert.Empty(t, second.Images)
	assert.Empty(t, second.Variants)
}

func TestClient_FetchProducts_PageSizeIsClamped(t *testing.T) {
	client := NewClient(Options{Domain: "shop.example.com", AccessToken: "x", PageSize: 1000})
	assert.Equal(t, MaxPageSize, client.pageSize)

	client = NewClient(Options{Domain: "shop.example.com", AccessToken: "x", PageSize: 50})
	assert.Equal(t, 50, client.pageSize)
}

func TestClient_FetchProducts_HTTPError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":"[API] Invalid API key or access token"}`))
	})

	products, err := client.FetchProducts(context.Background())
	assert.Nil(t, products)
	require.Error(t, err)

	var upstreamErr *UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusUnauthorized, upstreamErr.StatusCode)
	assert.Contains(t, upstreamErr.Body, "Invalid API key")
	assert.Contains(t, err.Error(), "status 401")
}

func TestClient_FetchProducts_GraphQLErrors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":[{"message":"Throttled"},{"message":"Field 'foo' doesn't exist"}]}`))
	})

	_, err := client.FetchProducts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Throttled; Field 'foo' doesn't exist")
}

func TestClient_FetchProducts_MalformedBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>not json</html>`))
	})

	_, err := client.FetchProducts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed response")
}

func TestClient_FetchProducts_MissingData(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := client.FetchProducts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data")
}

func TestClient_FetchProducts_TransportError(t *testing.T) {
	client := NewClient(Options{Domain: "127.0.0.1:1", AccessToken: "x"})

	_, err := client.FetchProducts(context.Background())
	require.Error(t, err)

	var upstreamErr *UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Zero(t, upstreamErr.StatusCode)
	assert.NotNil(t, upstreamErr.Unwrap())
}

func TestClient_FetchProducts_NoRetry(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.FetchProducts(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_CountProducts(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req graphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Query, "productsCount")
		assert.Equal(t, "status:active", req.Variables["query"])

		w.Write([]byte(`{"data":{"productsCount":{"count":42}}}`))
	})

	count, err := client.CountProducts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

type recordingObserver struct {
	operations []string
	errs       []error
}

func (o *recordingObserver) ObserveUpstream(operation string, _ time.Duration, err error) {
	o.operations = append(o.operations, operation)
	o.errs = append(o.errs, err)
}

func TestClient_ObserverIsNotified(t *testing.T) {
	observer := &recordingObserver{}
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Options{
		Domain:      strings.TrimPrefix(server.URL, "https://"),
		AccessToken: "x",
		HTTPClient:  server.Client(),
		Observer:    observer,
	})

	_, err := client.FetchProducts(context.Background())
	require.Error(t, err)

	require.Equal(t, []string{"fetch_products"}, observer.operations)
	assert.Error(t, observer.errs[0])
}

func TestUpstreamError_TruncatesBody(t *testing.T) {
	err := &UpstreamError{StatusCode: 500, Message: "HTTP error", Body: strings.Repeat("x", 2000)}
	assert.Less(t, len(err.Error()), 600)
	assert.True(t, strings.HasSuffix(err.Error(), "..."))
}

func TestClient_FetchProducts_RequestsAllImages(t *testing.T) {
	const imageCount = 25

	edges := make([]string, 0, imageCount)
	for i := range imageCount {
		edges = append(edges, fmt.Sprintf(`{"node": {"url": "https://cdn.example.com/%d.jpg"}}`, i))
	}
	payload := fmt.Sprintf(`{"data":{"products":{"edges":[{"node":{
		"title": "Galeri", "handle": "galeri", "updatedAt": "2024-03-05T10:20:30Z",
		"tags": [], "images": {"edges": [%s]}, "variants": {"edges": []}}}]}}}`, strings.Join(edges, ","))

	var sent string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		sent = string(body)
		w.Write([]byte(payload))
	})

	products, err := client.FetchProducts(context.Background())
	require.NoError(t, err)

	assert.Contains(t, sent, "images(first: 250)")
	assert.NotContains(t, sent, "images(first: 20)")
	require.Len(t, products, 1)
	assert.Len(t, products[0].Images, imageCount)
	assert.Equal(t, "https://cdn.example.com/24.jpg", products[0].Images[imageCount-1].URL)
}

func TestUpstreamError_TruncatesOnRuneBoundary(t *testing.T) {
	// 511 ASCII bytes, then a two-byte rune straddling the 512 byte limit.
	body := strings.Repeat("x", 511) + strings.Repeat("ş", 100)
	err := &UpstreamError{Message: "HTTP error", Body: body}

	msg := err.Error()
	assert.True(t, utf8.ValidString(msg))
	assert.True(t, strings.HasSuffix(msg, strings.Repeat("x", 511)+"..."))
}
