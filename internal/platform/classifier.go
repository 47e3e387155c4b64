// Package platform provides cheap heuristics for labelling a page's likely
// CMS platform and its page type. Classification is a pure pattern match over
// the raw HTML; it only selects which extraction strategy runs and is never
// persisted as a confidence score.
package platform

import "strings"

// Platform identifies the likely CMS or framework behind a page.
type Platform string

const (
	WordPress     Platform = "wordpress"
	Shopify       Platform = "shopify"
	ReactSPA      Platform = "react_spa"
	StaticGeneric Platform = "static"
	Other         Platform = "other"
)

// Classify labels a page by its raw HTML. First match wins, in a fixed
// precedence order: WordPress, Shopify, React SPA, generic static, other.
func Classify(html string) Platform {
	lower := strings.ToLower(html)

	switch {
	case strings.Contains(lower, "wp-content") ||
		strings.Contains(lower, "wp-includes") ||
		strings.Contains(lower, `content="wordpress`):
		return WordPress
	case strings.Contains(lower, "cdn.shopify.com") ||
		strings.Contains(lower, "shopify.theme") ||
		strings.Contains(lower, "shopify-section"):
		return Shopify
	case strings.Contains(lower, "__next_data__") ||
		strings.Contains(lower, `id="root"`) ||
		strings.Contains(lower, `id="__next"`) ||
		strings.Contains(lower, "data-reactroot"):
		return ReactSPA
	case strings.Contains(lower, "<html") && strings.Contains(lower, "<body"):
		return StaticGeneric
	default:
		return Other
	}
}

// HasElementor reports whether the Elementor page builder is present.
// Detected independently of Classify because the builder's widget wrappers
// change where content sits relative to its heading.
func HasElementor(html string) bool {
	lower := strings.ToLower(html)
	return strings.Contains(lower, "elementor-widget") ||
		strings.Contains(lower, "elementor-section") ||
		strings.Contains(lower, "/elementor/")
}

// pageTypeRule maps keyword tokens to a page-type tag. Order matters: the
// first rule whose tokens match the path (then the title) wins.
type pageTypeRule struct {
	tag    string
	tokens []string
}

var pageTypeRules = []pageTypeRule{
	{"about", []string{"about"}},
	{"contact", []string{"contact"}},
	{"product", []string{"product", "shop", "store"}},
	{"service", []string{"service"}},
	{"blog", []string{"blog", "news", "article"}},
	{"portfolio", []string{"portfolio", "work", "project"}},
	{"team", []string{"team", "staff"}},
	{"pricing", []string{"pricing", "price", "plan"}},
}

// ClassifyPageType tags a page by its URL path and title.
// The root path is always the homepage; otherwise the first matching rule
// over path tokens, then title tokens, wins. Unmatched pages tag as "page".
func ClassifyPageType(path, title string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return "homepage"
	}

	lowerPath := strings.ToLower(trimmed)
	lowerTitle := strings.ToLower(title)

	for _, rule := range pageTypeRules {
		for _, token := range rule.tokens {
			if strings.Contains(lowerPath, token) {
				return rule.tag
			}
		}
	}
	for _, rule := range pageTypeRules {
		for _, token := range rule.tokens {
			if strings.Contains(lowerTitle, token) {
				return rule.tag
			}
		}
	}

	return "page"
}
