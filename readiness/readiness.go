// Package readiness drives a freshly navigated page into a stable,
// fully rendered state before candidate collection runs. It walks a fixed
// state machine: Navigating, ConsentCheck, LazyLoadScroll, NetworkIdleWait,
// Ready. Only navigation failures are fatal; every later state degrades
// gracefully because partial readiness still yields useful extraction.
package readiness

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pagepix/pagepix/browser"
	"github.com/pagepix/pagepix/config"
	"github.com/pagepix/pagepix/models"
)

// State names one phase of the readiness machine.
type State string

const (
	StateNavigating      State = "navigating"
	StateConsentCheck    State = "consent-check"
	StateLazyLoadScroll  State = "lazy-load-scroll"
	StateNetworkIdleWait State = "network-idle-wait"
	StateReady           State = "ready"
	StateFailed          State = "failed"
)

// Result reports what the controller observed on the way to Ready.
type Result struct {
	State          State
	ConsentClicked bool
	NetworkIdle    bool
}

// Controller prepares pages for extraction.
type Controller struct {
	cfg config.ReadinessConfig
}

func New(cfg config.ReadinessConfig) *Controller {
	return &Controller{cfg: cfg}
}

// Prepare navigates to url and runs the full readiness sequence. It fails
// only on navigation problems; consent, scroll and idle issues are logged
// and absorbed.
func (c *Controller) Prepare(ctx context.Context, drv browser.Driver, url string) (Result, error) {
	res := Result{State: StateNavigating}

	if err := c.navigate(ctx, drv, url); err != nil {
		res.State = StateFailed
		return res, err
	}

	res.State = StateConsentCheck
	res.ConsentClicked = c.DismissConsent(ctx, drv)

	res.State = StateLazyLoadScroll
	c.scrollForLazyContent(ctx, drv)

	res.State = StateNetworkIdleWait
	res.NetworkIdle = c.WaitNetworkIdle(ctx, drv)
	if !res.NetworkIdle {
		slog.Warn("network did not quiesce, proceeding anyway", "url", url)
	}

	res.State = StateReady
	return res, nil
}

// SecondConsentPass re-runs the consent check after the configured delay.
// Some pages reveal a second consent layer only after a pause.
func (c *Controller) SecondConsentPass(ctx context.Context, drv browser.Driver) bool {
	if !sleep(ctx, c.cfg.ConsentDelay) {
		return false
	}
	return c.DismissConsent(ctx, drv)
}

// navigate issues the navigation and waits for the document body to appear.
func (c *Controller) navigate(ctx context.Context, drv browser.Driver, url string) error {
	if err := drv.Navigate(url); err != nil {
		return models.NewExtractError(
			models.ErrCodeNavigation,
			"navigation failed for "+url,
			err,
		)
	}

	deadline := time.Now().Add(c.cfg.NavigationTimeout)
	for {
		res, err := drv.Eval(`() => document.body !== null`)
		if err == nil && res.Bool() {
			return nil
		}
		if err != nil && errors.Is(err, context.DeadlineExceeded) {
			break
		}
		if time.Now().After(deadline) {
			break
		}
		if !sleep(ctx, 200*time.Millisecond) {
			break
		}
	}
	return models.NewExtractError(
		models.ErrCodeLoadTimeout,
		"timed out waiting for page body at "+url,
		nil,
	)
}

// sleep waits for d unless ctx ends first. Returns false when the context
// ended.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
