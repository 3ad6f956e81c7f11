package cfg

import (
	"time"
)

type Cfg struct {
	// Shopify
	ShopDomain      string
	AccessToken     string
	APIVersion      string
	PageSize        int
	UpstreamTimeout time.Duration

	// Feed channel overrides
	FeedTitle       string
	FeedDescription string
	FeedLink        string
	FeedLanguage    string
	FeedsFile       string

	// Application configuration
	Port string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

// HasShopCredentials reports whether the settings required to reach the
// Admin API are present.
func (c *Cfg) HasShopCredentials() bool {
	return c.ShopDomain != "" && c.AccessToken != ""
}
