// Package analyser orchestrates a site analysis run: sitemap resolution
// with a breadth-first link-crawl fallback, sequential page fetching, and
// per-page content extraction. Pages are processed one at a time as a
// politeness tradeoff; a single page's failure is never fatal to the run.
package analyser

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/sitelens/sitelens/internal/cache"
	"github.com/sitelens/sitelens/internal/crawler"
	"github.com/sitelens/sitelens/internal/extract"
	"github.com/sitelens/sitelens/internal/platform"
	"github.com/sitelens/sitelens/internal/techdetect"
	"github.com/sitelens/sitelens/internal/util"
)

// Analyser runs one site analysis at a time. Each run gets a fresh
// visited-set; a single Analyser instance must not run concurrently.
type Analyser struct {
	config     *crawler.Config
	opts       Options
	fetcher    *crawler.Fetcher
	sitemaps   *crawler.SitemapResolver
	detector   *techdetect.Detector
	sink       Sink
	summariser Summariser
	limiter    *rate.Limiter
	visited    *cache.InMemoryCache
}

// New creates an Analyser. Both collaborators are optional: a nil sink
// skips persistence and a nil summariser falls back to the deterministic
// structure summary.
func New(config *crawler.Config, opts Options, sink Sink, summariser Summariser) (*Analyser, error) {
	if config == nil {
		config = crawler.DefaultConfig()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	timeout := config.DefaultTimeout
	if opts.DeepAnalysis {
		timeout = config.DeepTimeout
	}

	detector, err := techdetect.New()
	if err != nil {
		// Technology detection is an enrichment, not a requirement
		log.Warn().Err(err).Msg("Technology detector unavailable, continuing without it")
		detector = nil
	}

	limit := rate.Inf
	if config.RateLimit > 0 {
		limit = rate.Limit(config.RateLimit)
	}

	return &Analyser{
		config:     config,
		opts:       opts,
		fetcher:    crawler.NewFetcher(config, timeout),
		sitemaps:   crawler.NewSitemapResolver(config),
		detector:   detector,
		sink:       sink,
		summariser: summariser,
		limiter:    rate.NewLimiter(limit, 1),
		visited:    cache.NewInMemoryCache(),
	}, nil
}

// Run analyses one site. The only caller-visible failure is an invalid seed
// URL; every later failure is absorbed into a degraded PageResult, so the
// outcome is always "completed with N pages, M degraded".
func (a *Analyser) Run(ctx context.Context, seedURL string) (*RunResult, error) {
	seed, err := util.ValidateSeedURL(seedURL)
	if err != nil {
		return nil, err
	}
	origin := util.Origin(seed.String())

	run := &RunResult{
		RunID:     uuid.New().String(),
		SiteURL:   seedURL,
		Origin:    origin,
		StartedAt: time.Now(),
	}

	log.Info().
		Str("run_id", run.RunID).
		Str("site", seedURL).
		Int("max_pages", a.opts.MaxPages).
		Msg("Starting site analysis")

	urls := a.sitemaps.ResolveURLs(ctx, origin)
	if len(urls) > 0 {
		run.DiscoveryMode = DiscoverySitemap
		a.runSitemapDriven(ctx, run, urls)
	} else {
		run.DiscoveryMode = DiscoveryCrawl
		a.runFallbackCrawl(ctx, run, seed.String(), origin)
	}

	run.CompletedAt = time.Now()

	log.Info().
		Str("run_id", run.RunID).
		Str("mode", string(run.DiscoveryMode)).
		Int("pages_crawled", run.PagesCrawled).
		Int("pages_failed", run.PagesFailed).
		Dur("duration", run.CompletedAt.Sub(run.StartedAt)).
		Msg("Site analysis completed")

	return run, nil
}

// runSitemapDriven processes the sitemap's URL list in order, up to the
// page budget.
func (a *Analyser) runSitemapDriven(ctx context.Context, run *RunResult, urls []string) {
	total := min(len(urls), a.opts.MaxPages)

	for _, target := range urls {
		if len(run.Pages) >= a.opts.MaxPages {
			break
		}
		if ctx.Err() != nil {
			log.Warn().Str("run_id", run.RunID).Msg("Run cancelled, stopping sitemap traversal")
			break
		}
		if !a.visited.Mark(target) {
			continue
		}

		if err := a.limiter.Wait(ctx); err != nil {
			break
		}

		result, _, page := a.processPage(ctx, target, false)
		a.recordTechnologies(run, page)
		a.emit(ctx, run, result, total)
	}
}

// runFallbackCrawl discovers URLs breadth-first from the seed, enqueuing
// newly found same-origin links. Links on failed pages are not followed.
func (a *Analyser) runFallbackCrawl(ctx context.Context, run *RunResult, seedURL, origin string) {
	queue := []string{util.NormaliseURL(seedURL)}

	for len(queue) > 0 && len(run.Pages) < a.opts.MaxPages {
		if ctx.Err() != nil {
			log.Warn().Str("run_id", run.RunID).Msg("Run cancelled, stopping crawl")
			break
		}

		target := queue[0]
		queue = queue[1:]
		if target == "" || !a.visited.Mark(target) {
			continue
		}

		if err := a.limiter.Wait(ctx); err != nil {
			break
		}

		result, links, page := a.processPage(ctx, target, true)
		a.recordTechnologies(run, page)
		a.emit(ctx, run, result, a.opts.MaxPages)

		for _, link := range links {
			normalised := util.NormaliseURL(link)
			if normalised == "" || !util.IsCrawlable(normalised, origin) || a.visited.Has(normalised) {
				continue
			}
			queue = append(queue, normalised)
		}
	}
}

// processPage fetches, classifies, and extracts one page. It always returns
// a PageResult; fetch and parse failures produce the degraded form. Links
// are collected only when requested and only from successfully fetched
// pages.
func (a *Analyser) processPage(ctx context.Context, target string, collectLinks bool) (*PageResult, []string, *crawler.FetchedPage) {
	page, err := a.fetcher.Fetch(ctx, target)
	if err != nil || !page.Succeeded() {
		return degradedResult(target, page, err), nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.HTML))
	if err != nil {
		return degradedResult(target, page, err), nil, nil
	}

	plat := platform.Classify(page.HTML)
	elementor := platform.HasElementor(page.HTML)
	content := extract.Extract(doc, page.FinalURL, plat, elementor, a.opts.IncludeImages)

	result := &PageResult{
		URL:              target,
		Title:            content.Title,
		PageType:         platform.ClassifyPageType(pathOf(page.FinalURL), content.Title),
		StatusCode:       page.StatusCode,
		Sections:         content.Sections,
		Images:           content.Images,
		Headings:         content.Headings,
		MetaDescription:  content.MetaDescription,
		StructureSummary: content.StructureSummary,
	}

	if a.opts.DeepAnalysis {
		result.CompleteContent = completeContent(extract.ExtractExactOrder(doc, page.FinalURL))
	}

	result.ContentSummary = a.summarise(ctx, page, content)

	var links []string
	if collectLinks {
		links = extract.Links(doc, page.FinalURL)
	}

	return result, links, page
}

// summarise asks the optional collaborator for a content summary and falls
// back to the deterministic structure summary on absence or failure.
func (a *Analyser) summarise(ctx context.Context, page *crawler.FetchedPage, content *extract.PageContent) string {
	if a.summariser == nil || !a.opts.UseAI {
		return content.StructureSummary
	}

	summary, err := a.summariser.SummariseStructure(ctx, page.FinalURL, content.Title, page.HTML)
	if err != nil {
		log.Warn().
			Err(err).
			Str("url", page.FinalURL).
			Msg("Summariser failed, using structure summary")
		sentry.CaptureException(err)
		return content.StructureSummary
	}
	if summary == nil || summary.Text == "" {
		return content.StructureSummary
	}
	return summary.Text
}

// emit appends a result to the run and notifies the sink. Sink failures
// are logged and captured, never propagated.
func (a *Analyser) emit(ctx context.Context, run *RunResult, result *PageResult, total int) {
	run.Pages = append(run.Pages, result)
	run.PagesCrawled++
	if result.Degraded() {
		run.PagesFailed++
	}

	if a.sink == nil {
		return
	}
	if err := a.sink.SavePageResult(ctx, result); err != nil {
		log.Error().Err(err).Str("url", result.URL).Msg("Failed to persist page result")
		sentry.CaptureException(err)
	}
	if err := a.sink.UpdateRunProgress(ctx, len(run.Pages), total); err != nil {
		log.Error().Err(err).Msg("Failed to update run progress")
	}
}

// recordTechnologies fingerprints the first successfully fetched page.
func (a *Analyser) recordTechnologies(run *RunResult, page *crawler.FetchedPage) {
	if a.detector == nil || run.Technologies != nil || page == nil {
		return
	}
	result := a.detector.Detect(page.Headers, []byte(page.HTML))
	if len(result.Technologies) > 0 {
		run.Technologies = result.Technologies
	}
}

// degradedResult builds the placeholder emitted for a page that could not
// be fetched or parsed. The summary fields are always non-empty so
// downstream export has a cell to show.
func degradedResult(target string, page *crawler.FetchedPage, err error) *PageResult {
	status := 0
	if page != nil {
		status = page.StatusCode
	}
	reason := "fetch failed"
	if err != nil {
		reason = err.Error()
	}

	return &PageResult{
		URL:              target,
		Title:            "Error",
		PageType:         "page",
		StatusCode:       status,
		StructureSummary: "error: " + reason,
		ContentSummary:   "error: " + reason,
		Error:            reason,
	}
}

// completeContent joins exact-order blocks into one document-order text.
func completeContent(sections []extract.PageSection) string {
	if len(sections) == 0 {
		return ""
	}
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		parts = append(parts, s.Content)
	}
	return strings.Join(parts, "\n\n")
}

func pathOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Path
}
