// Package pipeline sequences one extraction run: page readiness, candidate
// collection, URL normalization, grouping and ranking, then the optional
// size probe, content extraction and screenshot. One run owns one browser
// tab for its whole duration.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pagepix/pagepix/browser"
	"github.com/pagepix/pagepix/collector"
	"github.com/pagepix/pagepix/config"
	"github.com/pagepix/pagepix/content"
	"github.com/pagepix/pagepix/dedupe"
	"github.com/pagepix/pagepix/models"
	"github.com/pagepix/pagepix/probe"
	"github.com/pagepix/pagepix/readiness"
	"github.com/pagepix/pagepix/urlnorm"
)

// Pipeline wires the extraction stages together.
type Pipeline struct {
	browser   *browser.Browser
	ready     *readiness.Controller
	collector *collector.Collector
	engine    *dedupe.Engine
	prober    *probe.Prober
	content   *content.Extractor
	cfg       *config.Config
}

func New(b *browser.Browser, cfg *config.Config) *Pipeline {
	return &Pipeline{
		browser:   b,
		ready:     readiness.New(cfg.Readiness),
		collector: collector.New(cfg.Collector),
		engine:    dedupe.NewEngine(cfg.Collector.CDNPrefixes),
		prober:    probe.New(cfg.Probe),
		content:   content.NewExtractor(),
		cfg:       cfg,
	}
}

// Run executes the full pipeline for one request. Only navigation failures
// produce an unsuccessful response; "no images" is a valid empty result.
func (p *Pipeline) Run(ctx context.Context, req *models.ExtractRequest) *models.ExtractResponse {
	req.Defaults()
	start := time.Now()

	if err := collector.ValidateScope(req.CSSSelector); err != nil {
		return failure(req.URL, models.NewExtractError(
			models.ErrCodeInvalidInput,
			"invalid css_selector: "+err.Error(),
			err,
		))
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(req.Timeout)*time.Second)
	defer cancel()

	session, release, err := p.browser.Acquire(ctx, req.Stealth)
	if err != nil {
		return failure(req.URL, err)
	}
	defer release()

	readyStart := time.Now()
	readyRes, err := p.ready.Prepare(ctx, session, req.URL)
	if err != nil {
		return failure(req.URL, err)
	}
	if p.ready.SecondConsentPass(ctx, session) {
		readyRes.ConsentClicked = true
	}
	readinessMs := time.Since(readyStart).Milliseconds()

	finalURL := session.CurrentURL()
	if finalURL == "" {
		finalURL = req.URL
	}

	collectStart := time.Now()
	raw := p.collector.Collect(session, collector.Options{
		CheckIframes:   *req.CheckIframes,
		CheckShadowDOM: *req.CheckShadowDOM,
		Scope:          req.CSSSelector,
	})
	normalized := p.normalize(raw, finalURL)
	winners := p.engine.Dedupe(normalized)
	collectionMs := time.Since(collectStart).Milliseconds()

	var probeMs int64
	if req.ProbeSizes {
		probeStart := time.Now()
		p.prober.Fill(ctx, winners)
		winners = probe.FilterMinSize(winners, req.MinSizeBytes)
		probeMs = time.Since(probeStart).Milliseconds()
	}

	resp := &models.ExtractResponse{
		Success:  true,
		FinalURL: finalURL,
		Images:   winners,
		Stats: models.ExtractStats{
			Collected:      len(raw),
			Deduplicated:   len(winners),
			NetworkIdle:    readyRes.NetworkIdle,
			ConsentClicked: readyRes.ConsentClicked,
		},
		Timing: models.TimingInfo{
			ReadinessMs:  readinessMs,
			CollectionMs: collectionMs,
			ProbeMs:      probeMs,
		},
	}

	if req.Content {
		if html, herr := session.HTML(); herr == nil {
			pc := p.content.Extract(html, finalURL, content.Options{Text: true, Markdown: true})
			resp.Content = &pc
		} else {
			slog.Warn("page content read failed", "url", finalURL, "error", herr)
		}
	}
	if req.Screenshot {
		if path, serr := session.Screenshot(""); serr == nil {
			resp.ScreenshotPath = path
		} else {
			slog.Warn("screenshot failed", "url", finalURL, "error", serr)
		}
	}

	resp.Timing.TotalMs = time.Since(start).Milliseconds()
	slog.Info("extraction finished",
		"url", req.URL,
		"collected", resp.Stats.Collected,
		"deduplicated", resp.Stats.Deduplicated,
		"totalMs", resp.Timing.TotalMs,
	)
	return resp
}

// normalize resolves every raw candidate against the page URL and tags its
// origin. Candidates whose URL cannot be normalized are dropped; a bad
// reference is never worth failing a run over.
func (p *Pipeline) normalize(raw []models.ImageCandidate, base string) []models.ImageCandidate {
	out := make([]models.ImageCandidate, 0, len(raw))
	for _, c := range raw {
		normalized, err := urlnorm.Normalize(c.URL, base)
		if err != nil {
			slog.Debug("dropping candidate with invalid url", "url", c.URL, "error", err)
			continue
		}
		c.URL = normalized
		c.FromCrossOrigin = urlnorm.CrossOrigin(normalized, base)
		out = append(out, c)
	}
	return out
}

// failure builds the explicit failure response for pipeline-fatal errors.
func failure(url string, err error) *models.ExtractResponse {
	var ee *models.ExtractError
	if !errors.As(err, &ee) {
		ee = models.NewExtractError(models.ErrCodeInternal, err.Error(), err)
	}
	slog.Error("extraction failed", "url", url, "code", ee.Code, "error", err)
	return &models.ExtractResponse{
		Success:  false,
		FinalURL: url,
		Images:   []models.ImageCandidate{},
		Error:    ee.ToDetail(),
	}
}
