package analyser

import (
	"context"
	"fmt"
	"time"

	"github.com/sitelens/sitelens/internal/extract"
)

// Options configures one analysis run.
type Options struct {
	MaxPages      int    // Page budget, 1..1000 (0 selects the default)
	IncludeImages bool   // Collect image references and inline image tokens
	DeepAnalysis  bool   // Also run exact-order extraction per page
	UseAI         bool   // Invoke the summariser collaborator when present
	AIAPIKey      string // Passed through to the summariser implementation
}

// DefaultMaxPages is the page budget applied when Options.MaxPages is zero.
const DefaultMaxPages = 50

// Validate checks option bounds and applies defaults. It must pass before
// any network activity starts.
func (o *Options) Validate() error {
	if o.MaxPages == 0 {
		o.MaxPages = DefaultMaxPages
	}
	if o.MaxPages < 1 || o.MaxPages > 1000 {
		return fmt.Errorf("max pages must be between 1 and 1000, got %d", o.MaxPages)
	}
	return nil
}

// Summary is a summariser collaborator's view of one page.
type Summary struct {
	PlatformGuess string `json:"platform_guess,omitempty"`
	Text          string `json:"text"`
}

// Summariser is the optional AI collaborator. The analyser works fully
// without one: absence and failure both fall back to the deterministic
// structure summary.
type Summariser interface {
	SummariseStructure(ctx context.Context, url, title, html string) (*Summary, error)
}

// Sink receives every PageResult as it is produced, supporting incremental
// persistence. Sink errors are logged and never abort traversal.
type Sink interface {
	SavePageResult(ctx context.Context, result *PageResult) error
	UpdateRunProgress(ctx context.Context, processed, total int) error
}

// PageResult is the unit emitted per crawled URL. Exactly one is produced
// for every attempted target, even on fetch or parse failure: a degraded
// result carries a zero/error status and an error marker instead of content.
type PageResult struct {
	URL              string                `json:"url"`
	Title            string                `json:"title"`
	PageType         string                `json:"page_type"`
	StatusCode       int                   `json:"status_code"`
	Sections         []extract.PageSection `json:"sections,omitempty"`
	Images           []extract.PageImage   `json:"images,omitempty"`
	Headings         []extract.Heading     `json:"headings,omitempty"`
	MetaDescription  string                `json:"meta_description,omitempty"`
	StructureSummary string                `json:"structure_summary"`
	ContentSummary   string                `json:"content_summary,omitempty"`
	CompleteContent  string                `json:"complete_content,omitempty"`
	Error            string                `json:"error,omitempty"`
}

// Degraded reports whether this result stands in for a page that could not
// be fetched or parsed.
func (r *PageResult) Degraded() bool {
	return r.Error != ""
}

// DiscoveryMode records how the run's URL set was discovered.
type DiscoveryMode string

const (
	DiscoverySitemap DiscoveryMode = "sitemap"
	DiscoveryCrawl   DiscoveryMode = "crawl"
)

// RunResult is the run-level envelope: every PageResult in processing order
// plus discovery metadata and the detected technology inventory.
type RunResult struct {
	RunID         string              `json:"run_id"`
	SiteURL       string              `json:"site_url"`
	Origin        string              `json:"origin"`
	DiscoveryMode DiscoveryMode       `json:"discovery_mode"`
	Pages         []*PageResult       `json:"pages"`
	PagesCrawled  int                 `json:"pages_crawled"`
	PagesFailed   int                 `json:"pages_failed"`
	Technologies  map[string][]string `json:"technologies,omitempty"`
	StartedAt     time.Time           `json:"started_at"`
	CompletedAt   time.Time           `json:"completed_at"`
}
