package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/sitelens/sitelens/internal/util"
)

const (
	// minDivText is the minimum own-text length for a generic div to count
	// as a content block in exact-order extraction.
	minDivText = 20
	// fingerprintLen is the text-prefix length used for block deduplication.
	fingerprintLen = 80
)

// ExtractExactOrder walks the whole body depth-first and emits a content
// block for each list, heading, paragraph, image, table, or sufficiently
// long div in encounter order. Blocks are deduplicated by a text-prefix
// fingerprint so the same text is not emitted once via a wrapper div and
// again via its child paragraph.
//
// This mode trades the heading-partitioned view for full-fidelity document
// order; callers pick one mode as canonical and never merge the two outputs.
func ExtractExactOrder(doc *goquery.Document, pageURL string) []PageSection {
	body := doc.Find("body")
	if body.Length() == 0 || len(body.Nodes) == 0 {
		return nil
	}

	w := exactWalker{
		pageURL: pageURL,
		seen:    make(map[string]bool),
	}
	w.walkChildren(body.Nodes[0])

	return w.sections
}

// exactWalker threads the seen-fingerprint set and the accumulator through
// one depth-first traversal. It is local to a single ExtractExactOrder call,
// keeping the extraction referentially transparent.
type exactWalker struct {
	pageURL  string
	seen     map[string]bool
	sections []PageSection
}

func (w *exactWalker) walkChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.visit(c)
	}
}

func (w *exactWalker) visit(n *html.Node) {
	if n.Type != html.ElementNode {
		return
	}

	switch n.Data {
	case "script", "style", "noscript", "template", "iframe":
		return

	case "ul", "ol":
		w.emitList(n)

	case "h1", "h2", "h3", "h4", "h5", "h6":
		if text := squish(nodeText(n)); text != "" {
			w.emit(PageSection{
				Type:    SectionHeading,
				Level:   headingLevel(n.Data),
				Title:   text,
				Content: text,
			}, text)
		}

	case "p", "blockquote":
		if text := squish(nodeText(n)); text != "" {
			w.emit(PageSection{Type: SectionContent, Content: truncate(text, maxSectionLength)}, text)
		}

	case "img":
		w.emitImage(n)

	case "table":
		if text := squish(nodeText(n)); text != "" {
			w.emit(PageSection{Type: SectionTable, Content: truncate(text, maxSectionLength)}, text)
		}

	case "form":
		if text := squish(nodeText(n)); text != "" {
			w.emit(PageSection{Type: SectionForm, Content: truncate(text, maxSectionLength)}, text)
		}
		w.walkChildren(n)

	case "div":
		if text := squish(nodeText(n)); len(text) >= minDivText {
			w.emit(PageSection{Type: SectionContent, Content: truncate(text, maxSectionLength)}, text)
		}
		// Children still get visited: the fingerprint set drops duplicates,
		// while content the wrapper truncated away can surface on its own
		w.walkChildren(n)

	default:
		w.walkChildren(n)
	}
}

// emit appends a section unless its fingerprint was already seen.
func (w *exactWalker) emit(section PageSection, text string) {
	fp := fingerprint(text)
	if fp == "" || w.seen[fp] {
		return
	}
	w.seen[fp] = true

	section.Position = len(w.sections)
	w.sections = append(w.sections, section)
}

func (w *exactWalker) emitList(n *html.Node) {
	var items []string
	var collect func(*html.Node)
	collect = func(node *html.Node) {
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "li" {
				if text := squish(nodeText(c)); text != "" {
					items = append(items, text)
				}
				continue
			}
			collect(c)
		}
	}
	collect(n)

	if len(items) == 0 {
		return
	}
	text := strings.Join(items, "; ")
	w.emit(PageSection{Type: SectionList, Content: truncate(text, maxSectionLength)}, text)
}

func (w *exactWalker) emitImage(n *html.Node) {
	src, alt := "", ""
	for _, attr := range n.Attr {
		switch attr.Key {
		case "src":
			src = attr.Val
		case "alt":
			alt = attr.Val
		}
	}

	resolved := util.ResolveURL(src, w.pageURL)
	if resolved == "" {
		return
	}
	if alt = squish(alt); alt == "" {
		alt = "image"
	}

	w.emit(PageSection{Type: SectionContent, Content: alt + ": " + resolved}, "img:"+resolved)
}

// fingerprint reduces a block's text to a lowercase prefix for dedup checks.
func fingerprint(text string) string {
	text = strings.ToLower(squish(text))
	if len(text) > fingerprintLen {
		text = text[:fingerprintLen]
	}
	return text
}

// nodeText concatenates the text nodes under n, skipping script/style.
func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "noscript") {
		return ""
	}

	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
		sb.WriteString(" ")
	}
	return sb.String()
}
