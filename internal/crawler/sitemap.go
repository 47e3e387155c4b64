package crawler

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/sitelens/sitelens/internal/util"
)

// maxSitemapBytes bounds how much of a single sitemap document is read.
const maxSitemapBytes = 10 * 1024 * 1024

// canonicalSitemapPaths are the common locations probed when robots.txt does
// not advertise a sitemap.
var canonicalSitemapPaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemap-index.xml",
	"/wp-sitemap.xml",
}

// SitemapResolver discovers and expands sitemap.xml-family documents into a
// flat list of crawlable page URLs. An empty result is the fallback signal
// for link-crawling, never an error.
type SitemapResolver struct {
	config *Config
	client *http.Client
}

// NewSitemapResolver creates a resolver with the given configuration.
func NewSitemapResolver(config *Config) *SitemapResolver {
	if config == nil {
		config = DefaultConfig()
	}
	return &SitemapResolver{
		config: config,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

type sitemapRef struct {
	Loc string `xml:"loc"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	URLs    []sitemapRef `xml:"url"`
}

// ResolveURLs finds a site's sitemap and returns its crawlable leaf URLs.
// Candidates are tried in order until one expands to a non-empty list.
func (s *SitemapResolver) ResolveURLs(ctx context.Context, origin string) []string {
	for _, candidate := range s.discoverCandidates(ctx, origin) {
		urls := s.expand(ctx, candidate, origin)
		if len(urls) > 0 {
			log.Debug().
				Str("sitemap", candidate).
				Int("url_count", len(urls)).
				Msg("Sitemap resolution succeeded")
			return urls
		}
	}

	log.Debug().
		Str("origin", origin).
		Msg("No usable sitemap found, traversal will fall back to link crawling")
	return nil
}

// discoverCandidates lists candidate sitemap URLs: robots.txt declarations
// first, then canonical filenames that answer a HEAD probe. The probes run
// concurrently but candidate order is preserved.
func (s *SitemapResolver) discoverCandidates(ctx context.Context, origin string) []string {
	var candidates []string

	robots := FetchRobots(ctx, origin, s.config.UserAgent)
	candidates = append(candidates, robots.Sitemaps...)

	probes := make([]bool, len(canonicalSitemapPaths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range canonicalSitemapPaths {
		g.Go(func() error {
			probes[i] = s.probe(gctx, origin+path)
			return nil
		})
	}
	g.Wait()

	for i, path := range canonicalSitemapPaths {
		if probes[i] {
			candidates = append(candidates, origin+path)
		}
	}

	seen := make(map[string]bool)
	unique := candidates[:0]
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		unique = append(unique, c)
	}

	log.Debug().
		Strs("candidates", unique).
		Msg("Sitemap candidates discovered")
	return unique
}

// probe checks whether a sitemap candidate exists without downloading it.
func (s *SitemapResolver) probe(ctx context.Context, sitemapURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, sitemapURL, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

type sitemapTask struct {
	url   string
	depth int
}

// expand walks a sitemap tree with an explicit (url, depth) worklist instead
// of recursion, so the depth, child, and leaf bounds are each enforced at a
// single checkpoint even when the index graph is self-referential or very
// wide.
func (s *SitemapResolver) expand(ctx context.Context, rootURL, origin string) []string {
	var leaves []string
	visited := map[string]bool{rootURL: true}
	worklist := []sitemapTask{{url: rootURL, depth: 0}}

	for len(worklist) > 0 && len(leaves) < s.config.SitemapLeafLimit {
		if ctx.Err() != nil {
			break
		}

		task := worklist[0]
		worklist = worklist[1:]

		body, err := s.fetchSitemap(ctx, task.url)
		if err != nil {
			log.Warn().Err(err).Str("url", task.url).Msg("Failed to fetch sitemap document")
			continue
		}

		var index sitemapIndex
		if err := xml.Unmarshal(body, &index); err == nil && len(index.Sitemaps) > 0 {
			if task.depth >= s.config.SitemapDepthLimit {
				log.Debug().
					Str("url", task.url).
					Int("depth", task.depth).
					Msg("Sitemap index beyond depth limit, skipping")
				continue
			}

			children := 0
			for _, ref := range index.Sitemaps {
				if children >= s.config.SitemapChildLimit {
					break
				}
				child := util.NormaliseURL(ref.Loc)
				if child == "" || visited[child] {
					continue
				}
				visited[child] = true
				worklist = append(worklist, sitemapTask{url: child, depth: task.depth + 1})
				children++
			}
			continue
		}

		var set urlSet
		if err := xml.Unmarshal(body, &set); err != nil {
			log.Warn().Err(err).Str("url", task.url).Msg("Unparseable sitemap document")
			continue
		}

		for _, ref := range set.URLs {
			if len(leaves) >= s.config.SitemapLeafLimit {
				break
			}
			leaf := util.NormaliseURL(ref.Loc)
			if leaf == "" || !util.IsCrawlable(leaf, origin) {
				continue
			}
			leaves = append(leaves, leaf)
		}
	}

	return leaves
}

// fetchSitemap downloads one sitemap document.
func (s *SitemapResolver) fetchSitemap(ctx context.Context, sitemapURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sitemap fetch returned status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxSitemapBytes))
}
