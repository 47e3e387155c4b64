// Package storage persists analysis output. The JSONL sink writes one
// JSON object per line as results arrive, so a partial run still leaves
// usable output on disk.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/sitelens/sitelens/internal/analyser"
)

// JSONLSink streams page results to a writer as JSON Lines. It is safe
// for use from a single run; the mutex guards against interleaved writes
// if a caller shares one sink across runs.
type JSONLSink struct {
	mu      sync.Mutex
	w       io.Writer
	closer  io.Closer
	encoder *json.Encoder
}

// NewJSONLSink wraps an existing writer. The caller keeps ownership of
// the writer's lifecycle.
func NewJSONLSink(w io.Writer) *JSONLSink {
	return &JSONLSink{w: w, encoder: json.NewEncoder(w)}
}

// OpenJSONLSink creates or truncates a file and returns a sink that owns
// it. Close must be called to flush the file handle.
func OpenJSONLSink(path string) (*JSONLSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}
	sink := NewJSONLSink(f)
	sink.closer = f
	return sink, nil
}

// SavePageResult writes one result as a single JSON line.
func (s *JSONLSink) SavePageResult(_ context.Context, result *analyser.PageResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode page result: %w", err)
	}
	return nil
}

// UpdateRunProgress logs progress; the JSONL format itself has no
// progress record.
func (s *JSONLSink) UpdateRunProgress(_ context.Context, processed, total int) error {
	log.Debug().
		Int("processed", processed).
		Int("total", total).
		Msg("Run progress")
	return nil
}

// Close releases the underlying file when this sink owns one.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closer == nil {
		return nil
	}
	err := s.closer.Close()
	s.closer = nil
	return err
}

// WriteRunSummary appends the run-level metadata as a final JSON line,
// marked with a "run_summary" type so consumers can tell it apart from
// page lines. Page results are not repeated; they already have their
// own lines.
func (s *JSONLSink) WriteRunSummary(run *analyser.RunResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	envelope := struct {
		Type          string                 `json:"type"`
		RunID         string                 `json:"run_id"`
		SiteURL       string                 `json:"site_url"`
		DiscoveryMode analyser.DiscoveryMode `json:"discovery_mode"`
		PagesCrawled  int                    `json:"pages_crawled"`
		PagesFailed   int                    `json:"pages_failed"`
		Technologies  map[string][]string    `json:"technologies,omitempty"`
	}{
		Type:          "run_summary",
		RunID:         run.RunID,
		SiteURL:       run.SiteURL,
		DiscoveryMode: run.DiscoveryMode,
		PagesCrawled:  run.PagesCrawled,
		PagesFailed:   run.PagesFailed,
		Technologies:  run.Technologies,
	}

	if err := s.encoder.Encode(envelope); err != nil {
		return fmt.Errorf("failed to encode run summary: %w", err)
	}
	return nil
}
