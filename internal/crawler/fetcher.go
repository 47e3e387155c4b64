// Package crawler provides the network layer of a site analysis run: a
// bounded-timeout page fetcher and a sitemap resolver with depth and count
// protection. Failures are always page-local; nothing in this package aborts
// a traversal.
package crawler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog/log"
)

// Fetcher performs sequential page fetches with browser-like headers,
// redirect following, and a per-request timeout.
type Fetcher struct {
	config *Config
	colly  *colly.Collector
}

// NewFetcher creates a Fetcher. A zero timeout falls back to the config
// default; deep-analysis runs pass the longer DeepTimeout.
func NewFetcher(config *Config, timeout time.Duration) *Fetcher {
	if config == nil {
		config = DefaultConfig()
	}
	if timeout == 0 {
		timeout = config.DefaultTimeout
	}

	c := colly.NewCollector(
		colly.UserAgent(config.UserAgent),
		colly.AllowURLRevisit(),
	)
	// Non-2xx terminal responses still carry a body worth degrading over
	c.ParseHTTPErrorResponse = true

	c.SetClient(&http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     120 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			ForceAttemptHTTP2:   true,
		},
	})

	maxRedirects := config.MaxRedirects
	c.SetRedirectHandler(func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("too many redirects")
		}
		return nil
	})

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")

		log.Debug().
			Str("url", r.URL.String()).
			Msg("Fetching page")
	})

	return &Fetcher{
		config: config,
		colly:  c,
	}
}

// Fetch issues a GET for one URL and returns the terminal status, body, and
// post-redirect URL. Network errors and non-2xx/3xx terminal statuses return
// the best-known status code (0 if unknown) alongside the error; the page is
// never nil.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*FetchedPage, error) {
	if err := ctx.Err(); err != nil {
		return &FetchedPage{FinalURL: targetURL}, err
	}

	page := &FetchedPage{FinalURL: targetURL}
	var fetchErr error

	clone := f.colly.Clone()

	clone.OnResponse(func(r *colly.Response) {
		page.StatusCode = r.StatusCode
		page.HTML = string(r.Body)
		page.FinalURL = r.Request.URL.String()
		if r.Headers != nil {
			page.Headers = r.Headers.Clone()
		}
	})

	clone.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil {
			page.StatusCode = r.StatusCode
		}
	})

	done := make(chan error, 1)
	go func() {
		done <- clone.Visit(targetURL)
	}()

	select {
	case visitErr := <-done:
		if fetchErr == nil {
			fetchErr = visitErr
		}
	case <-ctx.Done():
		log.Debug().
			Str("url", targetURL).
			Msg("Fetch cancelled by context")
		return page, ctx.Err()
	}

	if fetchErr != nil {
		log.Warn().
			Err(fetchErr).
			Str("url", targetURL).
			Int("status", page.StatusCode).
			Msg("Page fetch failed")
		return page, fetchErr
	}

	if !page.Succeeded() {
		err := fmt.Errorf("non-success status code: %d", page.StatusCode)
		log.Warn().
			Int("status", page.StatusCode).
			Str("url", targetURL).
			Msg("Page fetch returned non-success status")
		return page, err
	}

	log.Debug().
		Int("status", page.StatusCode).
		Str("url", page.FinalURL).
		Int("bytes", len(page.HTML)).
		Msg("Page fetched")

	return page, nil
}

// UserAgent returns the user agent string used for requests.
func (f *Fetcher) UserAgent() string {
	return f.config.UserAgent
}
