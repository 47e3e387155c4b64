package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sitemapSite is a configurable fake site serving sitemap documents keyed by
// path. Fetches are counted per path.
type sitemapSite struct {
	mu      sync.Mutex
	pages   map[string]string
	fetched map[string]int
	server  *httptest.Server
}

func newSitemapSite() *sitemapSite {
	site := &sitemapSite{
		pages:   make(map[string]string),
		fetched: make(map[string]int),
	}
	site.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		site.mu.Lock()
		body, ok := site.pages[r.URL.Path]
		if r.Method == http.MethodGet {
			site.fetched[r.URL.Path]++
		}
		site.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	return site
}

func (s *sitemapSite) url() string { return s.server.URL }

func (s *sitemapSite) fetchCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetched[path]
}

func urlset(locs ...string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, loc := range locs {
		sb.WriteString("<url><loc>" + loc + "</loc></url>")
	}
	sb.WriteString("</urlset>")
	return sb.String()
}

func sitemapindex(locs ...string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?><sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, loc := range locs {
		sb.WriteString("<sitemap><loc>" + loc + "</loc></sitemap>")
	}
	sb.WriteString("</sitemapindex>")
	return sb.String()
}

func TestResolveURLsSimpleSitemap(t *testing.T) {
	site := newSitemapSite()
	defer site.server.Close()
	origin := site.url()

	site.pages["/sitemap.xml"] = urlset(
		origin+"/",
		origin+"/about",
		origin+"/blog/post-1",
		origin+"/file.pdf",          // non-HTML extension filtered
		origin+"/wp-admin/settings", // system prefix filtered
		"https://other.com/page",    // cross-origin filtered
	)

	resolver := NewSitemapResolver(DefaultConfig())
	urls := resolver.ResolveURLs(context.Background(), origin)

	assert.Equal(t, []string{origin + "/", origin + "/about", origin + "/blog/post-1"}, urls)
}

func TestResolveURLsFromRobots(t *testing.T) {
	site := newSitemapSite()
	defer site.server.Close()
	origin := site.url()

	site.pages["/robots.txt"] = "User-agent: *\nSitemap: " + origin + "/custom-map.xml\n"
	site.pages["/custom-map.xml"] = urlset(origin + "/only-page")

	resolver := NewSitemapResolver(DefaultConfig())
	urls := resolver.ResolveURLs(context.Background(), origin)

	assert.Equal(t, []string{origin + "/only-page"}, urls)
}

func TestResolveURLsIndexRecursion(t *testing.T) {
	site := newSitemapSite()
	defer site.server.Close()
	origin := site.url()

	site.pages["/sitemap.xml"] = sitemapindex(origin+"/sitemap-a.xml", origin+"/sitemap-b.xml")
	site.pages["/sitemap-a.xml"] = urlset(origin+"/a1", origin+"/a2")
	site.pages["/sitemap-b.xml"] = urlset(origin + "/b1")

	resolver := NewSitemapResolver(DefaultConfig())
	urls := resolver.ResolveURLs(context.Background(), origin)

	assert.Equal(t, []string{origin + "/a1", origin + "/a2", origin + "/b1"}, urls)
}

func TestResolveURLsDepthBound(t *testing.T) {
	site := newSitemapSite()
	defer site.server.Close()
	origin := site.url()

	// A chain of indexes deeper than the depth limit; the tail holds the URLs
	site.pages["/sitemap.xml"] = sitemapindex(origin + "/level1.xml")
	site.pages["/level1.xml"] = sitemapindex(origin + "/level2.xml")
	site.pages["/level2.xml"] = sitemapindex(origin + "/level3.xml")
	site.pages["/level3.xml"] = urlset(origin + "/too-deep")

	resolver := NewSitemapResolver(DefaultConfig())
	urls := resolver.ResolveURLs(context.Background(), origin)

	assert.Empty(t, urls)
	// The index past the depth limit is never expanded
	assert.Equal(t, 0, site.fetchCount("/level3.xml"))
}

func TestResolveURLsSelfReferentialIndex(t *testing.T) {
	site := newSitemapSite()
	defer site.server.Close()
	origin := site.url()

	site.pages["/sitemap.xml"] = sitemapindex(origin+"/sitemap.xml", origin+"/leaves.xml")
	site.pages["/leaves.xml"] = urlset(origin + "/page")

	resolver := NewSitemapResolver(DefaultConfig())
	urls := resolver.ResolveURLs(context.Background(), origin)

	assert.Equal(t, []string{origin + "/page"}, urls)
	assert.Equal(t, 1, site.fetchCount("/sitemap.xml"))
}

func TestResolveURLsLeafCap(t *testing.T) {
	site := newSitemapSite()
	defer site.server.Close()
	origin := site.url()

	locs := make([]string, 600)
	for i := range locs {
		locs[i] = fmt.Sprintf("%s/page-%d", origin, i)
	}
	site.pages["/sitemap.xml"] = urlset(locs...)

	resolver := NewSitemapResolver(DefaultConfig())
	urls := resolver.ResolveURLs(context.Background(), origin)

	assert.Len(t, urls, DefaultConfig().SitemapLeafLimit)
}

func TestResolveURLsChildCap(t *testing.T) {
	site := newSitemapSite()
	defer site.server.Close()
	origin := site.url()

	children := make([]string, 10)
	for i := range children {
		path := fmt.Sprintf("/child-%d.xml", i)
		children[i] = origin + path
		site.pages[path] = urlset(fmt.Sprintf("%s/from-child-%d", origin, i))
	}
	site.pages["/sitemap.xml"] = sitemapindex(children...)

	resolver := NewSitemapResolver(DefaultConfig())
	urls := resolver.ResolveURLs(context.Background(), origin)

	require.Len(t, urls, DefaultConfig().SitemapChildLimit)
	assert.Equal(t, 0, site.fetchCount("/child-7.xml"))
}

func TestResolveURLsNoSitemap(t *testing.T) {
	site := newSitemapSite()
	defer site.server.Close()

	resolver := NewSitemapResolver(DefaultConfig())
	urls := resolver.ResolveURLs(context.Background(), site.url())

	assert.Empty(t, urls)
}

func TestResolveURLsMalformedSitemap(t *testing.T) {
	site := newSitemapSite()
	defer site.server.Close()
	origin := site.url()

	site.pages["/sitemap.xml"] = "this is not xml at all"

	resolver := NewSitemapResolver(DefaultConfig())
	urls := resolver.ResolveURLs(context.Background(), origin)

	assert.Empty(t, urls)
}
