package crawler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/temoto/robotstxt"
)

// RobotsRules wraps the parsed robots.txt group for our user agent together
// with any sitemap locations the file advertises.
type RobotsRules struct {
	group    *robotstxt.Group
	Sitemaps []string
}

// Allowed reports whether robots.txt permits fetching the given path.
// Missing or unreadable robots.txt means no restrictions.
func (r *RobotsRules) Allowed(path string) bool {
	if r == nil || r.group == nil {
		return true
	}
	return r.group.Test(path)
}

// FetchRobots fetches and parses robots.txt for a site origin. Absence or
// failure is not an error condition: the caller gets empty rules and
// proceeds unrestricted.
func FetchRobots(ctx context.Context, origin, userAgent string) *RobotsRules {
	robotsURL := origin + "/robots.txt"

	log.Debug().
		Str("robots_url", robotsURL).
		Msg("Fetching robots.txt")

	client := &http.Client{Timeout: 10 * time.Second}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return &RobotsRules{}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", robotsURL).Msg("Failed to fetch robots.txt, proceeding with no restrictions")
		return &RobotsRules{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Debug().Int("status", resp.StatusCode).Msg("No usable robots.txt, no restrictions apply")
		return &RobotsRules{}
	}

	// 1MB bound prevents a hostile robots.txt from exhausting memory
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1*1024*1024))
	if err != nil {
		return &RobotsRules{}
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to parse robots.txt, proceeding with no restrictions")
		return &RobotsRules{}
	}

	rules := &RobotsRules{
		group:    data.FindGroup(userAgent),
		Sitemaps: data.Sitemaps,
	}

	log.Debug().
		Int("sitemaps", len(rules.Sitemaps)).
		Msg("Parsed robots.txt rules")

	return rules
}
