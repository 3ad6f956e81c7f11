package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lysyi3m/shopify-rss/app/api"
	"github.com/lysyi3m/shopify-rss/app/cfg"
	"github.com/lysyi3m/shopify-rss/app/feed"
	"github.com/lysyi3m/shopify-rss/app/metrics"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting Shopify RSS server", "version", appCfg.Version)

	if !appCfg.HasShopCredentials() {
		slog.Warn("SHOPIFY_STORE_DOMAIN or SHOPIFY_ACCESS_TOKEN not set, feed endpoints will return errors")
	}

	profiles := feed.NewProfileCache(appCfg.FeedsFile)
	if err := profiles.Run(); err != nil {
		slog.Error("Failed to load feed profiles", "error", err)
		os.Exit(1)
	}
	slog.Info("Feed profiles loaded", "count", profiles.GetProfileCount())

	m := metrics.New()

	httpClient := &http.Client{
		Timeout: appCfg.UpstreamTimeout,
	}

	apiHandler := api.NewHandler(appCfg, api.NewClientFactory(httpClient, m), profiles, m)
	server := api.NewServer(apiHandler, m)

	// Feed responses wait on the upstream call, so writes are only bounded
	// when the upstream call is.
	var writeTimeout time.Duration
	if appCfg.UpstreamTimeout > 0 {
		writeTimeout = appCfg.UpstreamTimeout + 30*time.Second
	}

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		slog.Info("API endpoints available:")
		slog.Info(fmt.Sprintf("  RSS feed:       http://localhost:%s/rss", appCfg.Port))
		slog.Info(fmt.Sprintf("  Pinterest feed: http://localhost:%s/rss/pinterest", appCfg.Port))
		slog.Info(fmt.Sprintf("  Product count:  http://localhost:%s/api/products/count", appCfg.Port))
		slog.Info(fmt.Sprintf("  Health check:   http://localhost:%s/health", appCfg.Port))
		slog.Info(fmt.Sprintf("  Metrics:        http://localhost:%s/metrics", appCfg.Port))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig)
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Shopify RSS server shutdown complete")
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}
