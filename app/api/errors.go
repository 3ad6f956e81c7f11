package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

var ErrConfigurationMissing = errors.New("SHOPIFY_STORE_DOMAIN and SHOPIFY_ACCESS_TOKEN must be set")

const (
	labelConfiguration = "Configuration error"
	labelFeed          = "Failed to generate RSS feed"
	labelCount         = "Failed to fetch product count"
	labelNotFound      = "Not Found"
)

// respondError writes the 500 body shared by every data endpoint.
func respondError(c *gin.Context, label string, err error) {
	slog.Error(label, "path", c.Request.URL.Path, "request_id", c.GetString(requestIDKey), "error", err)

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   label,
		"message": err.Error(),
	})
}
