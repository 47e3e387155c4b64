// Package techdetect identifies the technologies behind a site using
// wappalyzergo fingerprints. It complements the cheap platform classifier:
// the classifier picks an extraction strategy per page, while this detector
// reports the full technology inventory once per run.
package techdetect

import (
	"net/http"
	"sync"

	wappalyzer "github.com/projectdiscovery/wappalyzergo"
	"github.com/rs/zerolog/log"
)

// Result maps technology name to its categories
// (e.g. {"WordPress": ["CMS"], "Cloudflare": ["CDN"]}).
type Result struct {
	Technologies map[string][]string `json:"technologies"`
}

// Detector provides technology detection capabilities
type Detector struct {
	client *wappalyzer.Wappalyze
}

// categoryNames maps wappalyzer category IDs to human-readable names
var categoryNames map[int]string
var categoryNamesOnce sync.Once

// New creates a new technology detector
func New() (*Detector, error) {
	client, err := wappalyzer.New()
	if err != nil {
		return nil, err
	}

	categoryNamesOnce.Do(func() {
		categoryNames = make(map[int]string)
		cats := wappalyzer.GetCategoriesMapping()
		for id, cat := range cats {
			categoryNames[id] = cat.Name
		}
	})

	return &Detector{
		client: client,
	}, nil
}

// Detect identifies technologies from HTTP headers and body
func (d *Detector) Detect(headers http.Header, body []byte) *Result {
	result := &Result{
		Technologies: make(map[string][]string),
	}

	fingerprints := d.client.FingerprintWithCats(headers, body)

	for tech, catInfo := range fingerprints {
		categories := make([]string, 0, len(catInfo.Cats))
		for _, catID := range catInfo.Cats {
			if name, ok := categoryNames[catID]; ok {
				categories = append(categories, name)
			}
		}
		result.Technologies[tech] = categories
	}

	log.Debug().
		Int("tech_count", len(result.Technologies)).
		Msg("Technology detection completed")

	return result
}
