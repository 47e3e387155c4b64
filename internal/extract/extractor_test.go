package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitelens/sitelens/internal/platform"
)

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractHeadingPartitioned(t *testing.T) {
	doc := parseDoc(t, `<html><body><h1>A</h1><p>x</p><h1>B</h1><p>y</p></body></html>`)

	content := Extract(doc, "https://example.com/", platform.StaticGeneric, false, true)

	require.Len(t, content.Sections, 2)
	assert.Equal(t, "A", content.Sections[0].Title)
	assert.Equal(t, "x", content.Sections[0].Content)
	assert.Equal(t, 0, content.Sections[0].Position)
	assert.Equal(t, "B", content.Sections[1].Title)
	assert.Equal(t, "y", content.Sections[1].Content)
	assert.Equal(t, 1, content.Sections[1].Position)
}

func TestExtractSectionSpansUntilEqualOrHigherHeading(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<h2>Topic</h2><p>one</p><h3>Sub</h3><p>two</p><h2>Next</h2><p>three</p>
	</body></html>`)

	content := Extract(doc, "https://example.com/", platform.StaticGeneric, false, false)

	require.Len(t, content.Sections, 3)
	// The h2 accumulates past the deeper h3 but stops at the next h2
	assert.Equal(t, "Topic", content.Sections[0].Title)
	assert.Equal(t, "one two", content.Sections[0].Content)
	assert.Equal(t, "Sub", content.Sections[1].Title)
	assert.Equal(t, "two", content.Sections[1].Content)
	assert.Equal(t, "Next", content.Sections[2].Title)
	assert.Equal(t, "three", content.Sections[2].Content)
}

func TestExtractHeadingWithoutContent(t *testing.T) {
	doc := parseDoc(t, `<html><body><h1>Lonely</h1></body></html>`)

	content := Extract(doc, "https://example.com/", platform.StaticGeneric, false, false)

	require.Len(t, content.Sections, 1)
	assert.Equal(t, SectionHeading, content.Sections[0].Type)
	assert.Equal(t, "Lonely", content.Sections[0].Title)
	assert.Equal(t, noContentMarker, content.Sections[0].Content)
}

func TestExtractHeaderNavigation(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<header>
			<span>Acme</span>
			<nav><a href="/">Home</a><a href="/about">About</a><a href="/about">About</a><a href="/x">X</a></nav>
		</header>
		<h1>Welcome</h1><p>body text</p>
	</body></html>`)

	content := Extract(doc, "https://example.com/", platform.StaticGeneric, false, false)

	require.NotEmpty(t, content.Sections)
	nav := content.Sections[0]
	assert.Equal(t, SectionNavigation, nav.Type)
	assert.Equal(t, 0, nav.Position)
	assert.Contains(t, nav.Content, "Home")
	// Duplicate link text collapses to one entry
	assert.Equal(t, 1, strings.Count(nav.Content, "About"))
	// Single-character labels fall below the navigation length bound
	assert.NotContains(t, nav.Content, "X")
	assert.Contains(t, nav.Content, "Acme")
}

func TestExtractFooterCopyrightOnly(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<h1>T</h1><p>body</p>
		<footer><p>© 2024 Acme</p><nav><a href="/x">X</a></nav></footer>
	</body></html>`)

	content := Extract(doc, "https://example.com/", platform.StaticGeneric, false, false)

	footer := content.Sections[len(content.Sections)-1]
	assert.Equal(t, "Footer", footer.Title)
	assert.Contains(t, footer.Content, "© 2024 Acme")
	assert.NotContains(t, footer.Content, "X")
}

func TestExtractFooterWithoutContactInfoOmitted(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<h1>T</h1><p>body</p>
		<footer><p>just some links and fluff</p></footer>
	</body></html>`)

	content := Extract(doc, "https://example.com/", platform.StaticGeneric, false, false)

	for _, s := range content.Sections {
		assert.NotEqual(t, "Footer", s.Title)
	}
}

func TestExtractImageResolution(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<h1>T</h1><p>body</p>
		<img src="/img/a.png" alt="Logo" width="120" height="60">
	</body></html>`)

	content := Extract(doc, "https://example.com/about", platform.StaticGeneric, false, true)

	require.Len(t, content.Images, 1)
	img := content.Images[0]
	assert.Equal(t, "https://example.com/img/a.png", img.Src)
	assert.Equal(t, "Logo", img.Alt)
	assert.Equal(t, 120, img.Width)
	assert.Equal(t, 60, img.Height)
	assert.Equal(t, 0, img.Position)
}

func TestExtractInlineImageTokens(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<h1>Gallery</h1>
		<div><img src="/shots/one.jpg" alt="First shot"></div>
		<h1>Next</h1><p>text</p>
	</body></html>`)

	content := Extract(doc, "https://example.com/", platform.StaticGeneric, false, true)

	require.NotEmpty(t, content.Sections)
	assert.Contains(t, content.Sections[0].Content, "First shot: https://example.com/shots/one.jpg")
}

func TestExtractPositionsDenseAndIncreasing(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<header><nav><a href="/">Home</a><a href="/b">Blog</a></nav></header>
		<h1>A</h1><p>x</p>
		<h2>B</h2><p>y</p>
		<footer><p>© Acme · hello@acme.com</p></footer>
	</body></html>`)

	content := Extract(doc, "https://example.com/", platform.StaticGeneric, false, false)

	require.NotEmpty(t, content.Sections)
	for i, s := range content.Sections {
		assert.Equal(t, i, s.Position)
	}
}

func TestExtractStructureSummary(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<h1>A</h1><h2>B</h2>
		<p>one</p><p>two</p><p>three</p>
		<img src="/a.png"><a href="/x">x</a>
		<form></form><table></table><ul><li>i</li></ul>
	</body></html>`)

	content := Extract(doc, "https://example.com/", platform.StaticGeneric, false, false)

	assert.Equal(t,
		"2 headings, 3 paragraphs, 1 images, 1 links, 1 forms, 1 tables, 1 lists",
		content.StructureSummary)
}

func TestExtractMetaDescriptionAndTitle(t *testing.T) {
	doc := parseDoc(t, `<html><head>
		<title>  Acme —  Home  </title>
		<meta name="description" content="We make widgets.">
	</head><body><h1>A</h1><p>x</p></body></html>`)

	content := Extract(doc, "https://example.com/", platform.StaticGeneric, false, false)

	assert.Equal(t, "We make widgets.", content.MetaDescription)
	assert.Contains(t, content.Title, "Acme")
}

func TestExtractSectionLengthCap(t *testing.T) {
	long := strings.Repeat("word ", 2000)
	doc := parseDoc(t, `<html><body><h1>Big</h1><p>`+long+`</p></body></html>`)

	content := Extract(doc, "https://example.com/", platform.StaticGeneric, false, false)

	require.Len(t, content.Sections, 1)
	assert.LessOrEqual(t, len(content.Sections[0].Content), maxSectionLength)
}

func TestBuilderStrategy(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<link href="/wp-content/themes/x.css">
		<div class="elementor-section">
			<div class="elementor-widget elementor-widget-heading">
				<div class="elementor-widget-container"><h2>Our Services</h2></div>
			</div>
			<div class="elementor-widget elementor-widget-text-editor">
				<div class="elementor-widget-container">
					<ul><li>Design</li><li>Build</li></ul>
					<p>We do all of it.</p>
				</div>
			</div>
		</div>
	</body></html>`)

	content := Extract(doc, "https://example.com/", platform.WordPress, true, false)

	require.NotEmpty(t, content.Sections)
	section := content.Sections[0]
	assert.Equal(t, "Our Services", section.Title)
	// Lists come before paragraphs in builder output
	assert.Less(t,
		strings.Index(section.Content, "Design"),
		strings.Index(section.Content, "We do all of it."))
	assert.Contains(t, section.Content, "Build")
}

func TestEcommerceStrategy(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<script src="https://cdn.shopify.com/x.js"></script>
		<div class="product-description">
			<h2>Blue Mug</h2>
			<p>A sturdy ceramic mug for daily use, dishwasher safe.</p>
		</div>
		<div class="rte">short</div>
	</body></html>`)

	content := Extract(doc, "https://example.com/products/mug", platform.Shopify, false, false)

	require.Len(t, content.Sections, 1)
	assert.Equal(t, "Blue Mug", content.Sections[0].Title)
	assert.Contains(t, content.Sections[0].Content, "ceramic mug")
}

func TestEcommerceStrategyFallsBackToGeneric(t *testing.T) {
	doc := parseDoc(t, `<html><body><h1>A</h1><p>x</p></body></html>`)

	content := Extract(doc, "https://example.com/", platform.Shopify, false, false)

	require.Len(t, content.Sections, 1)
	assert.Equal(t, "A", content.Sections[0].Title)
	assert.Equal(t, "x", content.Sections[0].Content)
}
