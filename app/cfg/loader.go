package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Shopify configuration
	ShopDomain      string        `long:"shop-domain" env:"SHOPIFY_STORE_DOMAIN" description:"Shop domain, e.g. my-store.myshopify.com"`
	AccessToken     string        `long:"access-token" env:"SHOPIFY_ACCESS_TOKEN" description:"Admin API access token"`
	APIVersion      string        `long:"api-version" env:"SHOPIFY_API_VERSION" default:"2024-01" description:"Admin API version"`
	PageSize        int           `long:"page-size" env:"SHOPIFY_PAGE_SIZE" default:"250" description:"Number of products requested (max 250)"`
	UpstreamTimeout time.Duration `long:"upstream-timeout" env:"UPSTREAM_TIMEOUT" default:"0" description:"Timeout for Admin API requests (0 uses transport defaults)"`

	// Feed configuration
	FeedTitle       string `long:"feed-title" env:"RSS_TITLE" description:"Channel title override"`
	FeedDescription string `long:"feed-description" env:"RSS_DESCRIPTION" description:"Channel description override"`
	FeedLink        string `long:"feed-link" env:"RSS_LINK" description:"Storefront base URL used for item links"`
	FeedLanguage    string `long:"feed-language" env:"RSS_LANGUAGE" description:"Channel language code"`
	FeedsFile       string `long:"feeds-file" env:"FEEDS_FILE" default:"./feeds.yml" description:"YAML file with per-route channel profiles"`

	// Application configuration
	Port string `long:"port" env:"PORT" default:"3000" description:"HTTP server port"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Shopify-RSS/1.0" description:"User agent string for Admin API requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/Istanbul)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load reads an optional .env file, then flags and environment variables.
// It returns nil, nil when help was requested.
func Load() (*Cfg, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to read .env file", "error", err)
	}

	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		ShopDomain:      strings.TrimSpace(raw.ShopDomain),
		AccessToken:     strings.TrimSpace(raw.AccessToken),
		APIVersion:      raw.APIVersion,
		PageSize:        raw.PageSize,
		UpstreamTimeout: raw.UpstreamTimeout,
		FeedTitle:       raw.FeedTitle,
		FeedDescription: raw.FeedDescription,
		FeedLink:        strings.TrimRight(raw.FeedLink, "/"),
		FeedLanguage:    raw.FeedLanguage,
		FeedsFile:       raw.FeedsFile,
		Port:            raw.Port,
		UserAgent:       raw.UserAgent,
		Timezone:        raw.Timezone,
		Debug:           raw.Debug,
		Version:         GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	// The value is emitted as configured either way.
	if cfg.FeedLanguage != "" && !isLanguageTag(cfg.FeedLanguage) {
		slog.Warn("RSS_LANGUAGE is not a valid BCP 47 tag", "language", cfg.FeedLanguage)
	}

	return cfg, nil
}

func isLanguageTag(code string) bool {
	_, err := language.Parse(code)
	return err == nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			slog.Debug("Timezone configured", "timezone", timezone)
		}
	}
	return nil
}
