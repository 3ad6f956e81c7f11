package api

import (
	"context"
	"net/http"

	"github.com/lysyi3m/shopify-rss/app/catalog"
	"github.com/lysyi3m/shopify-rss/app/cfg"
	"github.com/lysyi3m/shopify-rss/app/feed"
	"github.com/lysyi3m/shopify-rss/app/metrics"
)

type CatalogClient interface {
	FetchProducts(ctx context.Context) ([]catalog.Product, error)
	CountProducts(ctx context.Context) (int, error)
}

var _ CatalogClient = (*catalog.Client)(nil)

// ClientFactory builds a catalog client for a single request.
type ClientFactory func(c *cfg.Cfg) CatalogClient

type GeneratorInterface interface {
	Run(products []catalog.Product, ch feed.Channel) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type Handler struct {
	cfg       *cfg.Cfg
	newClient ClientFactory
	generator GeneratorInterface
	profiles  *feed.ProfileCache
	metrics   *metrics.Metrics
}

// NewClientFactory returns a factory producing Admin API clients that share httpClient.
func NewClientFactory(httpClient *http.Client, observer catalog.Observer) ClientFactory {
	return func(c *cfg.Cfg) CatalogClient {
		return catalog.NewClient(catalog.Options{
			Domain:      c.ShopDomain,
			AccessToken: c.AccessToken,
			APIVersion:  c.APIVersion,
			PageSize:    c.PageSize,
			UserAgent:   c.UserAgent,
			HTTPClient:  httpClient,
			Observer:    observer,
		})
	}
}
