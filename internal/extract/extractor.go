// Package extract turns parsed HTML into an ordered, structured
// representation of a page: a navigation block, heading-partitioned content
// sections, a footer block, and flat heading/image lists. Extraction is
// deterministic and performs no network access; platform-specific strategy
// variants handle the DOM shapes of common CMS output.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/sitelens/sitelens/internal/platform"
	"github.com/sitelens/sitelens/internal/util"
)

const (
	// maxSectionLength caps accumulated text per section so a runaway page
	// cannot produce unbounded cells downstream.
	maxSectionLength = 2500
	// maxFooterLength bounds the retained footer text.
	maxFooterLength = 300
	// navTextMin/navTextMax bound the length of a usable navigation label.
	navTextMin = 2
	navTextMax = 50
	// noContentMarker fills sections for headings with no following content,
	// so export always has a non-empty cell to show.
	noContentMarker = "no content found"
)

var phonePattern = regexp.MustCompile(`\+?\d[\d\s().-]{6,}\d`)

// Extract produces the structured content of one page. The platform tag and
// the Elementor flag select the main-content strategy; includeImages controls
// whether inline image tokens and the flat image list are collected.
func Extract(doc *goquery.Document, pageURL string, plat platform.Platform, elementor, includeImages bool) *PageContent {
	content := &PageContent{
		Title:           squish(doc.Find("title").First().Text()),
		MetaDescription: doc.Find(`meta[name="description"]`).AttrOr("content", ""),
	}

	pos := 0

	if header := extractHeader(doc); header != nil {
		header.Position = pos
		pos++
		content.Sections = append(content.Sections, *header)
	}

	strategy := strategyFor(plat, elementor)
	for _, section := range strategy(doc, pageURL, includeImages) {
		section.Position = pos
		pos++
		content.Sections = append(content.Sections, section)
	}

	if footer := extractFooter(doc); footer != nil {
		footer.Position = pos
		pos++
		content.Sections = append(content.Sections, *footer)
	}

	content.Headings = extractHeadings(doc)
	if includeImages {
		content.Images = extractImages(doc, pageURL)
	}
	content.StructureSummary = structureSummary(doc)

	log.Debug().
		Str("url", pageURL).
		Str("platform", string(plat)).
		Int("sections", len(content.Sections)).
		Int("headings", len(content.Headings)).
		Int("images", len(content.Images)).
		Msg("Extracted page content")

	return content
}

// extractHeader collects deduplicated navigation link texts and any other
// header text into a single navigation section, or nil when the page has
// neither.
func extractHeader(doc *goquery.Document) *PageSection {
	sel := firstOf(doc, "header", "nav", `[role="banner"]`, ".header", "#header")
	if sel == nil {
		return nil
	}

	seen := make(map[string]bool)
	var navLinks []string
	sel.Find("a").Each(func(_ int, a *goquery.Selection) {
		text := squish(a.Text())
		if len(text) < navTextMin || len(text) > navTextMax || seen[text] {
			return
		}
		seen[text] = true
		navLinks = append(navLinks, text)
	})

	clone := sel.Clone()
	clone.Find("a, script, style").Remove()
	otherText := squish(clone.Text())

	var parts []string
	if len(navLinks) > 0 {
		parts = append(parts, strings.Join(navLinks, " | "))
	}
	if otherText != "" {
		parts = append(parts, otherText)
	}
	if len(parts) == 0 {
		return nil
	}

	return &PageSection{
		Type:    SectionNavigation,
		Title:   "Navigation",
		Content: truncate(strings.Join(parts, " | "), maxSectionLength),
	}
}

// extractFooter keeps only footer text resembling copyright or contact
// details. Link-bearing blocks are discarded: header logic already covers
// navigation and the footer must not duplicate it.
func extractFooter(doc *goquery.Document) *PageSection {
	sel := firstOf(doc, "footer", `[role="contentinfo"]`, ".footer", "#footer")
	if sel == nil {
		return nil
	}

	clone := sel.Clone()
	clone.Find("nav, a, script, style").Remove()

	var kept []string
	seen := make(map[string]bool)
	clone.Find("p, div, span, li").Each(func(_ int, block *goquery.Selection) {
		if block.Children().Length() > 0 {
			return
		}
		text := squish(block.Text())
		if text == "" || seen[text] || !looksLikeContactInfo(text) {
			return
		}
		seen[text] = true
		kept = append(kept, text)
	})

	// A bare text-node footer has no inner blocks at all
	if len(kept) == 0 {
		if text := squish(clone.Text()); text != "" && looksLikeContactInfo(text) {
			kept = append(kept, text)
		}
	}

	if len(kept) == 0 {
		return nil
	}

	return &PageSection{
		Type:    SectionContent,
		Title:   "Footer",
		Content: truncate(strings.Join(kept, " | "), maxFooterLength),
	}
}

// looksLikeContactInfo reports whether footer text is worth keeping:
// a copyright mark, the word itself, an email marker, or a phone-like number.
func looksLikeContactInfo(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(text, "©") ||
		strings.Contains(lower, "copyright") ||
		strings.Contains(text, "@") ||
		phonePattern.MatchString(text)
}

// extractHeadings returns every heading in document order.
func extractHeadings(doc *goquery.Document) []Heading {
	var headings []Heading
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		text := squish(s.Text())
		if text == "" {
			return
		}
		headings = append(headings, Heading{
			Level: headingLevel(goquery.NodeName(s)),
			Text:  text,
		})
	})
	return headings
}

// extractImages returns every image in document order with src resolved
// against the page URL. Images without a resolvable src are dropped.
func extractImages(doc *goquery.Document, pageURL string) []PageImage {
	var images []PageImage
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		src := util.ResolveURL(s.AttrOr("src", ""), pageURL)
		if src == "" {
			return
		}
		img := PageImage{
			Src:      src,
			Alt:      squish(s.AttrOr("alt", "")),
			Title:    squish(s.AttrOr("title", "")),
			Position: len(images),
		}
		if w, err := strconv.Atoi(s.AttrOr("width", "")); err == nil {
			img.Width = w
		}
		if h, err := strconv.Atoi(s.AttrOr("height", "")); err == nil {
			img.Height = h
		}
		images = append(images, img)
	})
	return images
}

// structureSummary renders element counts as a short comma-joined string.
func structureSummary(doc *goquery.Document) string {
	counts := []struct {
		label string
		sel   string
	}{
		{"headings", "h1, h2, h3, h4, h5, h6"},
		{"paragraphs", "p"},
		{"images", "img"},
		{"links", "a[href]"},
		{"forms", "form"},
		{"tables", "table"},
		{"lists", "ul, ol"},
	}

	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%d %s", doc.Find(c.sel).Length(), c.label))
	}
	return strings.Join(parts, ", ")
}

// firstOf returns the first non-empty selection among the given selectors.
func firstOf(doc *goquery.Document, selectors ...string) *goquery.Selection {
	for _, selector := range selectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

func headingLevel(nodeName string) int {
	if len(nodeName) == 2 && nodeName[0] == 'h' {
		if level := int(nodeName[1] - '0'); level >= 1 && level <= 6 {
			return level
		}
	}
	return 0
}

// squish collapses all whitespace runs into single spaces and trims.
func squish(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// imageTokens renders inline images within a selection as "alt: url" tokens.
func imageTokens(sel *goquery.Selection, pageURL string) []string {
	var tokens []string
	sel.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := util.ResolveURL(img.AttrOr("src", ""), pageURL)
		if src == "" {
			return
		}
		alt := squish(img.AttrOr("alt", ""))
		if alt == "" {
			alt = "image"
		}
		tokens = append(tokens, alt+": "+src)
	})
	return tokens
}
