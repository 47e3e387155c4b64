package crawler

import "net/http"

// FetchedPage is the transient result of fetching one URL. It is owned by
// the processing step for a single crawl target and discarded once
// extraction completes; it is never retained across pages.
type FetchedPage struct {
	StatusCode int         `json:"status_code"`
	HTML       string      `json:"-"`
	FinalURL   string      `json:"final_url"`
	Headers    http.Header `json:"-"`
}

// Succeeded reports whether the terminal response status counts as a
// successful fetch. Any 2xx or 3xx terminal status qualifies.
func (p *FetchedPage) Succeeded() bool {
	return p != nil && p.StatusCode >= 200 && p.StatusCode < 400
}
