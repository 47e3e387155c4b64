package extract

// SectionType labels the kind of content a PageSection carries.
type SectionType string

const (
	SectionHeading    SectionType = "heading"
	SectionContent    SectionType = "content"
	SectionList       SectionType = "list"
	SectionTable      SectionType = "table"
	SectionForm       SectionType = "form"
	SectionNavigation SectionType = "navigation"
)

// PageSection is a unit of extracted content. Position values are dense and
// follow document traversal order; they are never re-sorted.
type PageSection struct {
	Type     SectionType `json:"type"`
	Level    int         `json:"level,omitempty"`
	Title    string      `json:"title,omitempty"`
	Content  string      `json:"content"`
	Position int         `json:"position"`
}

// PageImage is an image reference with its src resolved to an absolute URL.
type PageImage struct {
	Src      string `json:"src"`
	Alt      string `json:"alt"`
	Title    string `json:"title,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Position int    `json:"position"`
}

// Heading is a flat heading entry in document order.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// PageContent is the deterministic extraction result for one page.
type PageContent struct {
	Title            string        `json:"title"`
	Sections         []PageSection `json:"sections"`
	Images           []PageImage   `json:"images"`
	Headings         []Heading     `json:"headings"`
	MetaDescription  string        `json:"meta_description"`
	StructureSummary string        `json:"structure_summary"`
}
