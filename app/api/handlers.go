package api

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/shopify-rss/app/cfg"
	"github.com/lysyi3m/shopify-rss/app/feed"
	"github.com/lysyi3m/shopify-rss/app/metrics"
)

const serviceName = "shopify-rss-feed"

func NewHandler(appCfg *cfg.Cfg, newClient ClientFactory, profiles *feed.ProfileCache,
	m *metrics.Metrics) *Handler {
	return &Handler{
		cfg:       appCfg,
		newClient: newClient,
		generator: feed.NewGenerator(appCfg.Version),
		profiles:  profiles,
		metrics:   m,
	}
}

func (h *Handler) GetRSS(c *gin.Context) {
	h.serveFeed(c, feed.ProfileRSS)
}

func (h *Handler) GetPinterestRSS(c *gin.Context) {
	h.serveFeed(c, feed.ProfilePinterest)
}

func (h *Handler) serveFeed(c *gin.Context, profile string) {
	if !h.cfg.HasShopCredentials() {
		respondError(c, labelConfiguration, ErrConfigurationMissing)
		return
	}

	products, err := h.newClient(h.cfg).FetchProducts(detach(c))
	if err != nil {
		respondError(c, labelFeed, err)
		return
	}

	rss, err := h.generator.Run(products, h.channel(profile))
	if err != nil {
		respondError(c, labelFeed, fmt.Errorf("failed to render feed: %w", err))
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveFeedItems(len(products))
	}

	slog.Info("Feed generated", "profile", profile, "items", len(products), "request_id", c.GetString(requestIDKey))

	c.Header("X-Feed-Items", strconv.Itoa(len(products)))
	c.Header("X-Feed-Profile", profile)
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", []byte(rss))
}

func (h *Handler) GetProductCount(c *gin.Context) {
	if !h.cfg.HasShopCredentials() {
		respondError(c, labelConfiguration, ErrConfigurationMissing)
		return
	}

	count, err := h.newClient(h.cfg).CountProducts(detach(c))
	if err != nil {
		respondError(c, labelCount, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   count,
		"message": fmt.Sprintf("Found %d active products", count),
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "OK",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"service":   serviceName,
	})
}

func (h *Handler) GetIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":      cmp.Or(h.channel(feed.ProfileRSS).Title, feed.DefaultTitle),
		"ShopDomain": h.cfg.ShopDomain,
		"Configured": h.cfg.HasShopCredentials(),
		"Version":    h.cfg.Version,
		"Feeds": []gin.H{
			{"Name": "RSS", "Path": "/rss"},
			{"Name": "Pinterest", "Path": "/rss/pinterest"},
		},
	})
}

func (h *Handler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":   labelNotFound,
		"message": fmt.Sprintf("Route %s %s not found", c.Request.Method, c.Request.URL.Path),
	})
}

// channel resolves the channel metadata for profile: profile file first, then
// environment overrides. Builder defaults apply to whatever is still empty.
func (h *Handler) channel(profile string) feed.Channel {
	fallback := feed.Channel{
		Title:       h.cfg.FeedTitle,
		Description: h.cfg.FeedDescription,
		Link:        h.cfg.FeedLink,
		Language:    h.cfg.FeedLanguage,
	}

	if h.profiles == nil {
		return fallback
	}
	return h.profiles.Resolve(profile, fallback)
}

// detach keeps request values but drops cancellation, so a client disconnect
// does not abort the upstream call.
func detach(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}
