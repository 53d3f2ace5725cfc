package readiness

import (
	"context"
	"log/slog"
	"time"

	"github.com/pagepix/pagepix/browser"
)

const dispatchLazyEventsJS = `() => {
	window.dispatchEvent(new Event('scroll'));
	document.dispatchEvent(new Event('scroll'));
	window.dispatchEvent(new Event('DOMContentLoaded'));
	window.dispatchEvent(new Event('load'));
}`

// loadMoreClickJS clicks up to limit visible "load more" controls matched
// by text or naming convention.
const loadMoreClickJS = `(limit) => {
	const texts = ['load more', 'mehr laden', 'show more'];
	let clicked = 0;
	const nodes = document.querySelectorAll(
		'button, a, div, [class*="load-more"], [id*="load-more"], ' +
		'[class*="loadMore"], [id*="loadMore"]');
	for (const el of nodes) {
		if (clicked >= limit) break;
		const t = (el.textContent || '').trim().toLowerCase();
		const cls = (el.className || '') + ' ' + (el.id || '');
		const byText = texts.some(want => t === want || (t.length < 40 && t.includes(want)));
		const byName = /load-?more/i.test(cls);
		if (!byText && !byName) continue;
		const style = window.getComputedStyle(el);
		if (style.display === 'none' || style.visibility === 'hidden') continue;
		try {
			el.click();
			clicked++;
		} catch (e) {}
	}
	return clicked;
}`

// scrollForLazyContent triggers lazy loading with five stacked techniques.
// Phases fail independently; a broken phase never blocks the next one. The
// page always ends scrolled back to the top.
func (c *Controller) scrollForLazyContent(ctx context.Context, drv browser.Driver) {
	phases := []struct {
		name string
		run  func(context.Context, browser.Driver) error
	}{
		{"incremental-scroll", c.incrementalScroll},
		{"anchor-scroll", c.anchorScroll},
		{"bounce-scroll", c.bounceScroll},
		{"event-dispatch", c.dispatchEvents},
		{"load-more-clicks", c.clickLoadMore},
	}
	for _, p := range phases {
		if ctx.Err() != nil {
			break
		}
		if err := p.run(ctx, drv); err != nil {
			slog.Warn("scroll phase failed", "phase", p.name, "error", err)
		}
	}

	if _, err := drv.Eval(`() => window.scrollTo(0, 0)`); err != nil {
		slog.Debug("scroll to top failed", "error", err)
	}
	sleep(ctx, c.cfg.ScrollPause)
}

// incrementalScroll steps down the page, re-reading the document height
// after each step so growth extends the walk, capped at MaxScrollDistance.
func (c *Controller) incrementalScroll(ctx context.Context, drv browser.Driver) error {
	height, err := c.pageHeight(drv)
	if err != nil {
		return err
	}
	pos := 0
	for pos < height {
		pos += c.cfg.ScrollStep
		if _, err := drv.Eval(`(y) => window.scrollTo(0, y)`, pos); err != nil {
			return err
		}
		if !sleep(ctx, c.cfg.ScrollPause) {
			return ctx.Err()
		}
		if h, err := c.pageHeight(drv); err == nil && h > height {
			height = h
		}
		if pos > c.cfg.MaxScrollDistance {
			break
		}
	}
	return nil
}

// anchorScroll jumps to a sample of structural elements spread through the
// document; some lazy loaders only react to elements entering the viewport.
func (c *Controller) anchorScroll(ctx context.Context, drv browser.Driver) error {
	els, err := drv.Elements("div, section, article, footer, button")
	if err != nil {
		return err
	}
	if len(els) == 0 || c.cfg.AnchorSamples <= 0 {
		return nil
	}
	step := len(els) / c.cfg.AnchorSamples
	if step < 1 {
		step = 1
	}
	visited := 0
	for i := 0; i < len(els) && visited < c.cfg.AnchorSamples; i += step {
		if err := els[i].ScrollIntoView(); err != nil {
			continue
		}
		visited++
		if !sleep(ctx, c.cfg.ScrollPause) {
			return ctx.Err()
		}
	}
	return nil
}

// bounceScroll goes straight to the bottom, then walks back up in large
// steps to fire scroll listeners in both directions.
func (c *Controller) bounceScroll(ctx context.Context, drv browser.Driver) error {
	if _, err := drv.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
		return err
	}
	if !sleep(ctx, time.Second) {
		return ctx.Err()
	}
	height, err := c.pageHeight(drv)
	if err != nil {
		return err
	}
	for pos := height; pos > 0; pos -= 800 {
		if _, err := drv.Eval(`(y) => window.scrollTo(0, y)`, pos); err != nil {
			return err
		}
		if !sleep(ctx, 200*time.Millisecond) {
			return ctx.Err()
		}
	}
	return nil
}

func (c *Controller) dispatchEvents(ctx context.Context, drv browser.Driver) error {
	if _, err := drv.Eval(dispatchLazyEventsJS); err != nil {
		return err
	}
	sleep(ctx, time.Second)
	return nil
}

func (c *Controller) clickLoadMore(ctx context.Context, drv browser.Driver) error {
	if c.cfg.LoadMoreClicks <= 0 {
		return nil
	}
	res, err := drv.Eval(loadMoreClickJS, c.cfg.LoadMoreClicks)
	if err != nil {
		return err
	}
	if res.Int() > 0 {
		slog.Debug("clicked load-more controls", "count", res.Int())
		sleep(ctx, 1500*time.Millisecond)
	}
	return nil
}

func (c *Controller) pageHeight(drv browser.Driver) (int, error) {
	res, err := drv.Eval(`() => document.body.scrollHeight`)
	if err != nil {
		return 0, err
	}
	return res.Int(), nil
}
