package catalog

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultAPIVersion = "2024-01"
	MaxPageSize       = 250

	activeProductsFilter = "status:active AND published_status:published"
)

// Shopify caps product media at 250, so images(first: 250) returns every
// image. Only the first variant is ever priced.
const productsQuery = `query ActiveProducts($first: Int!, $query: String!) {
  products(first: $first, query: $query) {
    edges {
      node {
        title
        descriptionHtml
        handle
        updatedAt
        productType
        tags
        images(first: 250) { edges { node { url } } }
        variants(first: 1) { edges { node { price } } }
      }
    }
  }
}`

const countQuery = `query ActiveProductsCount($query: String!) {
  productsCount(query: $query) { count }
}`

// Observer receives the outcome of every upstream call.
type Observer interface {
	ObserveUpstream(operation string, duration time.Duration, err error)
}

type Options struct {
	Domain      string
	AccessToken string
	APIVersion  string
	PageSize    int
	UserAgent   string
	HTTPClient  *http.Client
	Observer    Observer
}

// Client reads the active catalog of a single shop. Domain and AccessToken are
// expected to be set by the caller.
type Client struct {
	domain      string
	accessToken string
	apiVersion  string
	pageSize    int
	userAgent   string
	httpClient  *http.Client
	observer    Observer
}

func NewClient(opts Options) *Client {
	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	return &Client{
		domain:      opts.Domain,
		accessToken: opts.AccessToken,
		apiVersion:  cmp.Or(opts.APIVersion, DefaultAPIVersion),
		pageSize:    pageSize,
		userAgent:   opts.UserAgent,
		httpClient:  cmp.Or(opts.HTTPClient, http.DefaultClient),
		observer:    opts.Observer,
	}
}

// FetchProducts returns the first page of active, published products in
// upstream order. No further pages are requested.
func (c *Client) FetchProducts(ctx context.Context) ([]Product, error) {
	start := time.Now()

	var resp productsResponse
	err := c.do(ctx, graphQLRequest{
		Query: productsQuery,
		Variables: map[string]any{
			"first": c.pageSize,
			"query": activeProductsFilter,
		},
	}, &resp)
	if err == nil {
		err = checkGraphQL(resp.Errors, resp.Data == nil)
	}
	c.observe("fetch_products", start, err)
	if err != nil {
		slog.Error("Upstream products request failed", "domain", c.domain, "error", err)
		return nil, err
	}

	edges := resp.Data.Products.Edges
	products := make([]Product, 0, len(edges))
	for _, edge := range edges {
		products = append(products, edge.Node.toProduct())
	}

	slog.Debug("Fetched products", "domain", c.domain, "count", len(products), "duration", time.Since(start))

	return products, nil
}

// CountProducts returns the number of active products in the shop.
func (c *Client) CountProducts(ctx context.Context) (int, error) {
	start := time.Now()

	var resp countResponse
	err := c.do(ctx, graphQLRequest{
		Query:     countQuery,
		Variables: map[string]any{"query": "status:active"},
	}, &resp)
	if err == nil {
		err = checkGraphQL(resp.Errors, resp.Data == nil)
	}
	c.observe("count_products", start, err)
	if err != nil {
		slog.Error("Upstream count request failed", "domain", c.domain, "error", err)
		return 0, err
	}

	return resp.Data.ProductsCount.Count, nil
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("https://%s/admin/api/%s/graphql.json", c.domain, c.apiVersion)
}

func (c *Client) do(ctx context.Context, payload graphQLRequest, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &UpstreamError{Message: "failed to encode request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return &UpstreamError{Message: "failed to create request", Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UpstreamError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamError{StatusCode: resp.StatusCode, Message: "failed to read response body", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP error: %s", resp.Status),
			Body:       string(data),
		}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &UpstreamError{
			StatusCode: resp.StatusCode,
			Message:    "malformed response",
			Body:       string(data),
			Err:        err,
		}
	}

	return nil
}

func (c *Client) observe(operation string, start time.Time, err error) {
	if c.observer != nil {
		c.observer.ObserveUpstream(operation, time.Since(start), err)
	}
}

func checkGraphQL(errs []graphQLError, missingData bool) error {
	if len(errs) > 0 {
		messages := make([]string, 0, len(errs))
		for _, e := range errs {
			messages = append(messages, e.Message)
		}
		return &UpstreamError{StatusCode: http.StatusOK, Message: strings.Join(messages, "; ")}
	}
	if missingData {
		return &UpstreamError{StatusCode: http.StatusOK, Message: "response contains no data"}
	}
	return nil
}

func (n productNode) toProduct() Product {
	product := Product{
		Title:           n.Title,
		DescriptionHTML: n.DescriptionHTML,
		Handle:          n.Handle,
		UpdatedAt:       n.UpdatedAt,
		ProductType:     n.ProductType,
		Tags:            strings.Join(n.Tags, ", "),
	}

	for _, edge := range n.Images.Edges {
		product.Images = append(product.Images, Image{URL: edge.Node.URL})
	}

	for _, edge := range n.Variants.Edges {
		product.Variants = append(product.Variants, Variant{Price: edge.Node.Price})
	}

	return product
}
