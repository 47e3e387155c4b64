package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sitelens/sitelens/internal/util"
)

// Links returns the resolved, deduplicated hrefs of every visible anchor in
// the document, in document order. Hidden elements and non-navigational
// schemes (javascript:, mailto:, tel:) are dropped; filtering by origin and
// crawlability is the caller's concern.
func Links(doc *goquery.Document, baseURL string) []string {
	seen := make(map[string]bool)
	var links []string

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if isElementHidden(a) {
			return
		}
		resolved := util.ResolveURL(a.AttrOr("href", ""), baseURL)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	})

	return links
}

// isElementHidden checks if an element is hidden based on common inline
// styles, accessibility attributes, and conventional CSS classes. This is a
// best-effort check over raw HTML attributes; it does not evaluate external
// stylesheets.
func isElementHidden(s *goquery.Selection) bool {
	hidingClasses := []string{
		"hide",
		"hidden",
		"display-none",
		"d-none",
		"invisible",
		"is-hidden",
		"sr-only",
		"visually-hidden",
	}

	for n := s; n.Length() > 0 && !n.Is("body"); n = n.Parent() {
		if ariaHidden, exists := n.Attr("aria-hidden"); exists && ariaHidden == "true" {
			return true
		}

		if style, exists := n.Attr("style"); exists {
			if strings.Contains(style, "display: none") || strings.Contains(style, "visibility: hidden") {
				return true
			}
		}

		for _, class := range hidingClasses {
			if n.HasClass(class) {
				return true
			}
		}
	}

	return false
}
