package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchRobots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`User-agent: *
Disallow: /admin
Sitemap: https://example.com/sitemap.xml
`))
	}))
	defer server.Close()

	rules := FetchRobots(context.Background(), server.URL, "SiteLens/1.0")

	require.NotNil(t, rules)
	assert.False(t, rules.Allowed("/admin/settings"))
	assert.True(t, rules.Allowed("/blog/post"))
	assert.Contains(t, rules.Sitemaps, "https://example.com/sitemap.xml")
}

func TestFetchRobotsMissingMeansUnrestricted(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	rules := FetchRobots(context.Background(), server.URL, "SiteLens/1.0")

	require.NotNil(t, rules)
	assert.True(t, rules.Allowed("/anything"))
	assert.Empty(t, rules.Sitemaps)
}

func TestFetchRobotsUnreachableHost(t *testing.T) {
	rules := FetchRobots(context.Background(), "http://127.0.0.1:1", "SiteLens/1.0")

	require.NotNil(t, rules)
	assert.True(t, rules.Allowed("/anything"))
}
