// Package collector discovers raw image references on a rendered page.
// It runs a fixed set of extraction strategies against the browser driver,
// each tolerant of its own failure, and returns whatever was gathered.
// URLs leave this package un-normalized; the pipeline resolves them later.
package collector

import (
	"log/slog"
	"strings"

	"github.com/andybalholm/cascadia"

	"github.com/pagepix/pagepix/browser"
	"github.com/pagepix/pagepix/config"
	"github.com/pagepix/pagepix/models"
)

// Options are the per-request collection switches.
type Options struct {
	// CheckIframes enables descent into embedded frames.
	CheckIframes bool

	// CheckShadowDOM enables scanning of attached shadow trees.
	CheckShadowDOM bool

	// Scope restricts element strategies to descendants of this CSS
	// selector. Empty means the whole document. Validate with
	// ValidateScope before passing it here.
	Scope string
}

// ValidateScope reports whether sel is a parseable CSS selector.
func ValidateScope(sel string) error {
	if sel == "" {
		return nil
	}
	_, err := cascadia.Parse(sel)
	return err
}

// Collector runs the extraction strategies.
type Collector struct {
	cfg config.CollectorConfig
}

func New(cfg config.CollectorConfig) *Collector {
	return &Collector{cfg: cfg}
}

// Collect gathers raw candidates from the page behind drv. A single
// strategy failing is logged and skipped; Collect itself never fails.
// Zero candidates on a loaded page is a valid outcome.
func (c *Collector) Collect(drv browser.Driver, opts Options) []models.ImageCandidate {
	r := &run{
		drv:   drv,
		cfg:   c.cfg,
		scope: opts.Scope,
		seen:  make(map[string]struct{}),
	}

	strategies := []strategy{
		&elementScan{label: "img-elements", selector: "img", attrs: imgAttrs},
		&styleScan{label: "inline-backgrounds", selector: `[style*="background"]`, kind: models.SourceBackground},
		&staticScan{label: "static-markup"},
		&galleryScan{label: "galleries"},
		&sliderScan{label: "sliders"},
	}
	if opts.CheckShadowDOM {
		strategies = append(strategies, &shadowScan{label: "shadow-trees", hostLimit: c.cfg.ShadowHostLimit})
	}
	if opts.CheckIframes {
		strategies = append(strategies, &frameScan{label: "frames"})
	}
	strategies = append(strategies, &scriptScan{label: "script-globals"})

	for _, s := range strategies {
		if err := s.run(r); err != nil {
			slog.Warn("extraction strategy failed", "strategy", s.name(), "error", err)
		}
	}

	slog.Debug("collection finished", "candidates", len(r.out), "strategies", len(strategies))
	return r.out
}

// strategy is one extraction behavior. Implementations append to the run's
// shared result list and must keep their failures to themselves where a
// partial result is still useful.
type strategy interface {
	name() string
	run(r *run) error
}

// run is the shared state of one Collect call.
type run struct {
	drv   browser.Driver
	cfg   config.CollectorConfig
	scope string
	seen  map[string]struct{}
	out   []models.ImageCandidate
}

// scoped prefixes selector with the request scope when one is set. Comma
// unions get the prefix on every member; the strategy selectors never use
// commas inside brackets, so a plain split is safe.
func (r *run) scoped(selector string) string {
	if r.scope == "" {
		return selector
	}
	parts := strings.Split(selector, ",")
	for i, p := range parts {
		parts[i] = r.scope + " " + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// add appends a candidate unless its raw URL is empty, inline data, or
// already seen. The seen set suppresses literal duplicates only; size and
// format variants survive until grouping.
func (r *run) add(c models.ImageCandidate) {
	url := strings.TrimSpace(c.URL)
	if url == "" || strings.HasPrefix(url, "data:") {
		return
	}
	if _, dup := r.seen[url]; dup {
		return
	}
	r.seen[url] = struct{}{}
	c.URL = url
	r.out = append(r.out, c)
}

// parseSrcset emits one URL per srcset entry, dropping width and density
// descriptors.
func parseSrcset(srcset string) []string {
	var urls []string
	for _, part := range strings.Split(srcset, ",") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) > 0 && fields[0] != "" {
			urls = append(urls, fields[0])
		}
	}
	return urls
}
