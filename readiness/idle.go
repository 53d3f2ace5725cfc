package readiness

import (
	"context"
	"log/slog"
	"time"

	"github.com/pagepix/pagepix/browser"
)

// idleInstrumentJS wraps fetch and XMLHttpRequest with an in-flight
// counter. Installing twice is harmless; the guard keeps the originals
// intact.
const idleInstrumentJS = `() => {
	if (window.__ppInflightInstalled) return;
	window.__ppInflightInstalled = true;
	window.__ppInflight = 0;

	const originalFetch = window.fetch;
	window.fetch = function() {
		window.__ppInflight++;
		return originalFetch.apply(this, arguments)
			.then(function(response) {
				window.__ppInflight--;
				return response;
			})
			.catch(function(error) {
				window.__ppInflight--;
				throw error;
			});
	};

	const originalOpen = XMLHttpRequest.prototype.open;
	const originalSend = XMLHttpRequest.prototype.send;
	XMLHttpRequest.prototype.open = function() {
		this.__ppTracked = true;
		return originalOpen.apply(this, arguments);
	};
	XMLHttpRequest.prototype.send = function() {
		if (this.__ppTracked) {
			window.__ppInflight++;
			this.addEventListener('loadend', function() {
				window.__ppInflight--;
			});
		}
		return originalSend.apply(this, arguments);
	};
}`

// WaitNetworkIdle installs request instrumentation and polls until the
// in-flight count stays at or below the configured threshold for the
// confirmation interval, or the idle timeout elapses. A timeout is reported
// as false, never as an error; callers proceed with whatever loaded.
func (c *Controller) WaitNetworkIdle(ctx context.Context, drv browser.Driver) bool {
	if _, err := drv.Eval(idleInstrumentJS); err != nil {
		slog.Warn("network instrumentation failed", "error", err)
		return false
	}

	start := time.Now()
	deadline := start.Add(c.cfg.IdleTimeout)
	for time.Now().Before(deadline) {
		if c.inflight(drv) <= c.cfg.MaxInflight {
			if !sleep(ctx, c.cfg.IdleConfirm) {
				return false
			}
			if c.inflight(drv) <= c.cfg.MaxInflight {
				slog.Debug("network idle", "after", time.Since(start))
				return true
			}
		}
		if !sleep(ctx, c.cfg.IdlePollInterval) {
			return false
		}
	}
	slog.Debug("network idle wait timed out", "timeout", c.cfg.IdleTimeout)
	return false
}

func (c *Controller) inflight(drv browser.Driver) int {
	res, err := drv.Eval(`() => window.__ppInflight || 0`)
	if err != nil {
		return 0
	}
	return res.Int()
}
