package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sitelens/sitelens/internal/platform"
	"github.com/sitelens/sitelens/internal/util"
)

const (
	// builderSiblingSpan bounds how many next-siblings the page-builder
	// strategy inspects for widget containers near a heading.
	builderSiblingSpan = 5
	// ecommerceMinBlock is the minimum block text length the e-commerce
	// strategy accepts.
	ecommerceMinBlock = 30
)

// mainContentStrategy produces the heading/content sections for a page.
// Positions are assigned by the caller.
type mainContentStrategy func(doc *goquery.Document, pageURL string, includeImages bool) []PageSection

// strategyFor selects the main-content strategy for a platform tag. Adding a
// platform means adding a row here, not branching in the extractor.
func strategyFor(plat platform.Platform, elementor bool) mainContentStrategy {
	if plat == platform.WordPress && elementor {
		return builderSections
	}
	if plat == platform.Shopify {
		return ecommerceSections
	}
	return genericSections
}

// genericSections walks headings in document order and accumulates sibling
// content (paragraphs, lists, divs) until the next heading of equal or
// higher level. Headings inside header/nav/footer belong to those blocks and
// are skipped here.
func genericSections(doc *goquery.Document, pageURL string, includeImages bool) []PageSection {
	var sections []PageSection

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, h *goquery.Selection) {
		if h.ParentsFiltered("header, nav, footer").Length() > 0 {
			return
		}
		title := squish(h.Text())
		if title == "" {
			return
		}
		level := headingLevel(goquery.NodeName(h))

		var blocks []string
		var images []string
		for sib := h.Next(); sib.Length() > 0; sib = sib.Next() {
			name := goquery.NodeName(sib)
			if lvl := headingLevel(name); lvl > 0 {
				if lvl <= level {
					break
				}
				// A deeper heading starts its own section
				continue
			}
			switch name {
			case "p", "ul", "ol", "div", "section", "table", "blockquote", "article":
				if text := squish(sib.Text()); text != "" {
					blocks = append(blocks, text)
				}
				if includeImages {
					images = append(images, imageTokens(sib, pageURL)...)
				}
			case "img":
				if includeImages {
					images = append(images, selfImageToken(sib, pageURL)...)
				}
			}
		}

		sections = append(sections, buildHeadingSection(title, level, blocks, images))
	})

	return sections
}

// builderSections handles page-builder output (Elementor and friends), where
// real content nests inside widget containers near the heading rather than
// in its direct siblings. Lists are extracted before paragraphs within each
// container.
func builderSections(doc *goquery.Document, pageURL string, includeImages bool) []PageSection {
	var sections []PageSection

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, h *goquery.Selection) {
		if h.ParentsFiltered("header, nav, footer").Length() > 0 {
			return
		}
		title := squish(h.Text())
		if title == "" {
			return
		}
		level := headingLevel(goquery.NodeName(h))

		// Builder markup wraps each heading in its own widget, so content
		// widgets are siblings of the wrapper, not of the heading itself.
		start := h
		if h.Next().Length() == 0 {
			if widget := h.Closest(".elementor-widget"); widget.Length() > 0 {
				start = widget
			}
		}

		var lists, paras []string
		var images []string
		sib := start.Next()
		for i := 0; i < builderSiblingSpan && sib.Length() > 0; i, sib = i+1, sib.Next() {
			if sib.Find("h1, h2, h3, h4, h5, h6").Length() > 0 ||
				headingLevel(goquery.NodeName(sib)) > 0 {
				break
			}

			containers := sib.Find(".elementor-widget-container, .widget-container, .wp-block-group")
			if containers.Length() == 0 {
				containers = sib
			}

			containers.Each(func(_ int, c *goquery.Selection) {
				c.Find("li").Each(func(_ int, li *goquery.Selection) {
					if text := squish(li.Text()); text != "" {
						lists = append(lists, text)
					}
				})
				c.Find("p").Each(func(_ int, p *goquery.Selection) {
					if text := squish(p.Text()); text != "" {
						paras = append(paras, text)
					}
				})
			})
			if includeImages {
				images = append(images, imageTokens(sib, pageURL)...)
			}
		}

		blocks := append(lists, paras...)
		sections = append(sections, buildHeadingSection(title, level, blocks, images))
	})

	return sections
}

// ecommerceSections targets product and page-content containers with a lower
// length threshold, emitting whole-block text rather than heading-partitioned
// sections. Falls back to the generic walk when nothing matches.
func ecommerceSections(doc *goquery.Document, pageURL string, includeImages bool) []PageSection {
	selectors := strings.Join([]string{
		".product-description",
		".product__description",
		".product-single__description",
		".page-content",
		".rte",
		".shopify-section main",
	}, ", ")

	var sections []PageSection
	seen := make(map[string]bool)

	doc.Find(selectors).Each(func(_ int, block *goquery.Selection) {
		text := squish(block.Text())
		if len(text) < ecommerceMinBlock || seen[text] {
			return
		}
		seen[text] = true

		title := squish(block.Find("h1, h2, h3").First().Text())
		if title == "" {
			title = "Content"
		}

		content := truncate(text, maxSectionLength)
		if includeImages {
			if tokens := imageTokens(block, pageURL); len(tokens) > 0 {
				content = truncate(content+" | "+strings.Join(tokens, " | "), maxSectionLength)
			}
		}

		sections = append(sections, PageSection{
			Type:    SectionContent,
			Title:   title,
			Content: content,
		})
	})

	if len(sections) == 0 {
		return genericSections(doc, pageURL, includeImages)
	}
	return sections
}

// buildHeadingSection assembles one section from accumulated blocks. A
// heading with nothing under it still produces a section, with an explicit
// marker instead of an empty string.
func buildHeadingSection(title string, level int, blocks, images []string) PageSection {
	body := truncate(strings.Join(blocks, " "), maxSectionLength)
	if len(images) > 0 {
		joined := strings.Join(images, " | ")
		if body != "" {
			body = truncate(body+" | "+joined, maxSectionLength)
		} else {
			body = truncate(joined, maxSectionLength)
		}
	}

	if body == "" {
		return PageSection{
			Type:    SectionHeading,
			Level:   level,
			Title:   title,
			Content: noContentMarker,
		}
	}
	return PageSection{
		Type:    SectionContent,
		Level:   level,
		Title:   title,
		Content: body,
	}
}

// selfImageToken renders a bare img sibling as an "alt: url" token.
func selfImageToken(img *goquery.Selection, pageURL string) []string {
	src := util.ResolveURL(img.AttrOr("src", ""), pageURL)
	if src == "" {
		return nil
	}
	alt := squish(img.AttrOr("alt", ""))
	if alt == "" {
		alt = "image"
	}
	return []string{alt + ": " + src}
}
