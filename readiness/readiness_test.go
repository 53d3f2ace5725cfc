package readiness

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ysmood/gson"

	"github.com/pagepix/pagepix/browser"
	"github.com/pagepix/pagepix/config"
	"github.com/pagepix/pagepix/models"
)

type fakeElement struct {
	visible   bool
	clickErr  error
	clicked   bool
	jsClicked bool
}

func (e *fakeElement) Attr(name string) (string, bool) { return "", false }
func (e *fakeElement) Text() string                    { return "" }
func (e *fakeElement) Visible() bool                   { return e.visible }
func (e *fakeElement) ScrollIntoView() error           { return nil }

func (e *fakeElement) Click() error {
	if e.clickErr != nil {
		return e.clickErr
	}
	e.clicked = true
	return nil
}

func (e *fakeElement) Eval(js string, args ...interface{}) (gson.JSON, error) {
	e.jsClicked = true
	return gson.New(nil), nil
}

func (e *fakeElement) Elements(selector string) ([]browser.Element, error) {
	return nil, nil
}

type fakeDriver struct {
	navErr    error
	bodyReady bool
	inflight  func() int
	elements  map[string][]browser.Element
	navigated []string
}

func (d *fakeDriver) Navigate(url string) error {
	d.navigated = append(d.navigated, url)
	return d.navErr
}

func (d *fakeDriver) CurrentURL() string { return "https://example.com/" }

func (d *fakeDriver) Eval(js string, args ...interface{}) (gson.JSON, error) {
	switch {
	case strings.Contains(js, "document.body !== null"):
		return gson.New(d.bodyReady), nil
	case strings.Contains(js, "__ppInflight ||"):
		n := 0
		if d.inflight != nil {
			n = d.inflight()
		}
		return gson.New(n), nil
	case strings.Contains(js, "document.body.scrollHeight"):
		return gson.New(600), nil
	}
	return gson.New(0), nil
}

func (d *fakeDriver) Elements(selector string) ([]browser.Element, error) {
	return d.elements[selector], nil
}

func (d *fakeDriver) EnterFrame(el browser.Element) error { return nil }
func (d *fakeDriver) DefaultContent() error               { return nil }
func (d *fakeDriver) HTML() (string, error)               { return "", nil }

func fastConfig() config.ReadinessConfig {
	return config.ReadinessConfig{
		NavigationTimeout: 100 * time.Millisecond,
		ConsentDelay:      time.Millisecond,
		ScrollStep:        300,
		MaxScrollDistance: 1200,
		ScrollPause:       time.Millisecond,
		AnchorSamples:     3,
		LoadMoreClicks:    2,
		IdleTimeout:       100 * time.Millisecond,
		IdlePollInterval:  5 * time.Millisecond,
		IdleConfirm:       5 * time.Millisecond,
		MaxInflight:       0,
	}
}

func TestPrepareHappyPath(t *testing.T) {
	d := &fakeDriver{bodyReady: true}
	c := New(fastConfig())

	res, err := c.Prepare(context.Background(), d, "https://example.com/")
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if res.State != StateReady {
		t.Errorf("state = %s, want %s", res.State, StateReady)
	}
	if !res.NetworkIdle {
		t.Error("expected network idle with zero in-flight requests")
	}
	if len(d.navigated) != 1 || d.navigated[0] != "https://example.com/" {
		t.Errorf("navigated = %v", d.navigated)
	}
}

func TestPrepareNavigationError(t *testing.T) {
	d := &fakeDriver{navErr: errors.New("dns failure")}
	c := New(fastConfig())

	res, err := c.Prepare(context.Background(), d, "https://bad.example/")
	if err == nil {
		t.Fatal("expected error")
	}
	var ee *models.ExtractError
	if !errors.As(err, &ee) || ee.Code != models.ErrCodeNavigation {
		t.Errorf("error = %v, want code %s", err, models.ErrCodeNavigation)
	}
	if res.State != StateFailed {
		t.Errorf("state = %s, want %s", res.State, StateFailed)
	}
}

func TestPrepareLoadTimeout(t *testing.T) {
	d := &fakeDriver{bodyReady: false}
	c := New(fastConfig())

	_, err := c.Prepare(context.Background(), d, "https://slow.example/")
	var ee *models.ExtractError
	if !errors.As(err, &ee) || ee.Code != models.ErrCodeLoadTimeout {
		t.Errorf("error = %v, want code %s", err, models.ErrCodeLoadTimeout)
	}
}

func TestDismissConsentClicksVisible(t *testing.T) {
	visible := &fakeElement{visible: true}
	hidden := &fakeElement{visible: false}
	d := &fakeDriver{
		elements: map[string][]browser.Element{
			consentSelectors[0]: {hidden, visible},
		},
	}
	c := New(fastConfig())

	if !c.DismissConsent(context.Background(), d) {
		t.Fatal("expected a click to be recorded")
	}
	if !visible.clicked {
		t.Error("visible element was not clicked")
	}
	if hidden.clicked || hidden.jsClicked {
		t.Error("hidden element must not be clicked")
	}
}

func TestDismissConsentForcedClickFallback(t *testing.T) {
	stubborn := &fakeElement{visible: true, clickErr: errors.New("intercepted")}
	d := &fakeDriver{
		elements: map[string][]browser.Element{
			consentSelectors[0]: {stubborn},
		},
	}
	c := New(fastConfig())

	if !c.DismissConsent(context.Background(), d) {
		t.Fatal("expected forced click to count")
	}
	if !stubborn.jsClicked {
		t.Error("forced script click was not attempted")
	}
}

func TestDismissConsentNoBanner(t *testing.T) {
	d := &fakeDriver{}
	c := New(fastConfig())

	if c.DismissConsent(context.Background(), d) {
		t.Error("no banner must report false, not an error")
	}
}

func TestWaitNetworkIdleConfirms(t *testing.T) {
	d := &fakeDriver{inflight: func() int { return 0 }}
	c := New(fastConfig())

	if !c.WaitNetworkIdle(context.Background(), d) {
		t.Error("expected idle with zero in-flight requests")
	}
}

func TestWaitNetworkIdleTimesOut(t *testing.T) {
	d := &fakeDriver{inflight: func() int { return 5 }}
	c := New(fastConfig())

	start := time.Now()
	if c.WaitNetworkIdle(context.Background(), d) {
		t.Error("expected timeout with persistent in-flight requests")
	}
	if time.Since(start) > time.Second {
		t.Error("idle wait ran far past its timeout")
	}
}

func TestWaitNetworkIdleSettles(t *testing.T) {
	reads := 0
	d := &fakeDriver{inflight: func() int {
		reads++
		if reads < 3 {
			return 2
		}
		return 0
	}}
	c := New(fastConfig())

	if !c.WaitNetworkIdle(context.Background(), d) {
		t.Error("expected idle once the counter settled")
	}
}

func TestSecondConsentPassRespectsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := &fakeDriver{
		elements: map[string][]browser.Element{
			consentSelectors[0]: {&fakeElement{visible: true}},
		},
	}
	c := New(fastConfig())

	if c.SecondConsentPass(ctx, d) {
		t.Error("cancelled context must skip the second pass")
	}
}
