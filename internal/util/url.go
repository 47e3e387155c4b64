package util

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"
)

// skippedExtensions are path suffixes that never resolve to an HTML page.
var skippedExtensions = []string{
	".pdf", ".jpg", ".jpeg", ".png", ".gif", ".svg", ".webp",
	".css", ".js", ".xml", ".txt", ".ico",
}

// systemPrefixes are administrative or framework paths excluded from crawling.
var systemPrefixes = []string{
	"/wp-admin", "/wp-json", "/admin", "/api", "/cgi-bin", "/cdn-cgi",
	"/_next/static", "/static", "/assets", "/feed",
}

// NormaliseDomain removes http/https prefix and www. from domain
func NormaliseDomain(domain string) string {
	domain = strings.TrimPrefix(domain, "http://")
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "www.")
	domain = strings.TrimSuffix(domain, "/")
	return domain
}

// NormaliseURL ensures a URL has a proper scheme and validates format.
// Returns an empty string for anything unusable.
func NormaliseURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		rawURL = "https://" + rawURL
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil || parsedURL.Scheme == "" || parsedURL.Host == "" {
		log.Debug().Str("url", rawURL).Err(err).Msg("Invalid URL format")
		return ""
	}

	// Drop fragments so the visited-set keys on the canonical page address
	parsedURL.Fragment = ""

	return parsedURL.String()
}

// ResolveURL resolves a possibly-relative href against a base URL.
// Returns an empty string on malformed input; it never panics.
func ResolveURL(href, base string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		log.Debug().Str("href", href).Err(err).Msg("Skipping unparsable href")
		return ""
	}

	resolved := baseURL.ResolveReference(ref)
	if resolved.Scheme == "" || resolved.Host == "" {
		return ""
	}

	return resolved.String()
}

// normaliseHostPort removes default ports (80 for HTTP, 443 for HTTPS) from host.
func normaliseHostPort(host, scheme string) string {
	if scheme == "http" && strings.HasSuffix(host, ":80") {
		return strings.TrimSuffix(host, ":80")
	}
	if scheme == "https" && strings.HasSuffix(host, ":443") {
		return strings.TrimSuffix(host, ":443")
	}
	return host
}

// Origin returns the scheme://host origin of a URL with default ports
// stripped, or an empty string if the URL cannot be parsed.
func Origin(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	host := normaliseHostPort(parsed.Host, parsed.Scheme)
	return parsed.Scheme + "://" + strings.ToLower(host)
}

// IsCrawlable reports whether a URL should be fetched as part of a site
// traversal. All conditions are conjunctive: the URL must share the site
// origin, carry no fragment, and sit on neither a non-HTML extension nor an
// administrative path.
func IsCrawlable(rawURL, siteOrigin string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	if Origin(rawURL) != siteOrigin {
		return false
	}

	if parsed.Fragment != "" {
		return false
	}

	path := strings.ToLower(parsed.Path)
	for _, ext := range skippedExtensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}

	for _, prefix := range systemPrefixes {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}

	return true
}

// ValidateSeedURL checks that a seed URL is absolute and well-formed.
// This is the only caller-visible failure in a run: everything downstream
// degrades per page instead of aborting.
func ValidateSeedURL(rawURL string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL %q: %w", rawURL, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("seed URL %q must use http or https", rawURL)
	}

	if parsed.Host == "" {
		return nil, fmt.Errorf("seed URL %q has no host", rawURL)
	}

	return parsed, nil
}
