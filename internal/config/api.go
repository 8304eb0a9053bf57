package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/scrapmetrics/pkg/formatting"
	"github.com/JaimeStill/scrapmetrics/pkg/middleware"
	"github.com/JaimeStill/scrapmetrics/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "SCRAP_CORS_ENABLED",
	Origins:          "SCRAP_CORS_ORIGINS",
	AllowedMethods:   "SCRAP_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "SCRAP_CORS_ALLOWED_HEADERS",
	AllowCredentials: "SCRAP_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "SCRAP_CORS_MAX_AGE",
}

var rateLimitEnv = &middleware.RateLimitEnv{
	Enabled:           "SCRAP_RATE_LIMIT_ENABLED",
	RequestsPerSecond: "SCRAP_RATE_LIMIT_RPS",
	Burst:             "SCRAP_RATE_LIMIT_BURST",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "SCRAP_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "SCRAP_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, CORS, rate limit, and pagination settings.
type APIConfig struct {
	BasePath      string                     `toml:"base_path"`
	MaxUploadSize string                     `toml:"max_upload_size"`
	CORS          middleware.CORSConfig      `toml:"cors"`
	RateLimit     middleware.RateLimitConfig `toml:"rate_limit"`
	Pagination    pagination.Config          `toml:"pagination"`
}

func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 20 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.RateLimit.Finalize(rateLimitEnv); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.RateLimit.Merge(&overlay.RateLimit)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "20MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("SCRAP_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("SCRAP_API_MAX_UPLOAD_SIZE"); v != "" {
		c.MaxUploadSize = v
	}
}
