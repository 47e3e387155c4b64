package crawler

import (
	"time"
)

// Config holds the configuration for the fetch and sitemap layer.
type Config struct {
	DefaultTimeout    time.Duration // Timeout for a standard page fetch
	DeepTimeout       time.Duration // Timeout when deep content analysis is active
	MaxRedirects      int           // Redirect-follow bound per request
	RateLimit         int           // Maximum page fetches per second (politeness)
	UserAgent         string        // User agent string for requests
	SitemapDepthLimit int           // Maximum sitemap-index recursion depth
	SitemapChildLimit int           // Child sitemaps resolved per index document
	SitemapLeafLimit  int           // Leaf URL cap across the whole expansion
}

// DefaultConfig returns a Config instance with default values
func DefaultConfig() *Config {
	return &Config{
		DefaultTimeout:    30 * time.Second,
		DeepTimeout:       90 * time.Second,
		MaxRedirects:      10,
		RateLimit:         2,
		UserAgent:         "SiteLens/1.0 (+https://sitelens.dev/bot)",
		SitemapDepthLimit: 2,
		SitemapChildLimit: 5,
		SitemapLeafLimit:  500,
	}
}
