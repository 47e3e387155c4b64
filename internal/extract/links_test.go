package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinks(t *testing.T) {
	doc := parseDoc(t, `<html><body>
		<a href="/about">About</a>
		<a href="/about">About again</a>
		<a href="https://other.com/page">External</a>
		<a href="mailto:hi@example.com">Mail</a>
		<a href="#">Top</a>
		<a href="/hidden" style="display: none">Hidden</a>
		<div class="d-none"><a href="/also-hidden">Also hidden</a></div>
		<a href="/contact">Contact</a>
	</body></html>`)

	links := Links(doc, "https://example.com/")

	assert.Equal(t, []string{
		"https://example.com/about",
		"https://other.com/page",
		"https://example.com/contact",
	}, links)
}

func TestLinksEmptyDocument(t *testing.T) {
	doc := parseDoc(t, `<html><body></body></html>`)
	assert.Empty(t, Links(doc, "https://example.com/"))
}
