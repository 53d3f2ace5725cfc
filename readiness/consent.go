package readiness

import (
	"context"
	"log/slog"
	"time"

	"github.com/pagepix/pagepix/browser"
)

// consentSelectors matches consent controls by class, id, aria-label and
// title. Ordered; all of them run even after a successful click because
// pages can layer multiple banners.
var consentSelectors = []string{
	`button[class*="consent"],button[class*="cookie"],button[class*="accept"],button[class*="agree"]`,
	`a[class*="consent"],a[class*="cookie"],a[class*="accept"],a[class*="agree"]`,
	`div[class*="consent"],div[class*="cookie"],div[class*="accept"],div[class*="agree"]`,
	`[id*="consent"],[id*="cookie"],[id*="accept"],[id*="agree"]`,
	`button[aria-label="Accept cookies"],button[aria-label="Accept all cookies"],` +
		`button[aria-label="Allow cookies"],button[aria-label="Allow all"]`,
	`button[title="Accept cookies"],button[title="Accept all cookies"],` +
		`button[title="Allow cookies"],button[title="Allow all"]`,
}

// consentTexts is the button text table. English, German and French only;
// behavior for other languages is "no match". Configuration data, not
// logic: do not grow this silently.
var consentTexts = []string{
	// English
	"Accept", "Agree", "OK", "Got it",
	"accept cookies", "accept all", "allow cookies", "allow all",
	"accept all cookies", "accept necessary cookies",
	// German
	"Akzeptieren", "Zustimmen", "Einverstanden",
	"Alle akzeptieren", "Allen zustimmen", "Alles Akzeptieren",
	// French
	"Accepter", "J'accepte",
}

// consentTextClickJS clicks visible short-text elements matching any of the
// given strings. Runs fully in page script because selector queries cannot
// match on text content.
const consentTextClickJS = `(texts) => {
	let clicked = 0;
	const lowered = texts.map(t => t.toLowerCase());
	const nodes = document.querySelectorAll('button, a, div, span');
	for (const el of nodes) {
		const t = (el.textContent || '').trim().toLowerCase();
		if (!t || t.length > 60) continue;
		if (!lowered.some(want => t === want || t.includes(want))) continue;
		const style = window.getComputedStyle(el);
		if (style.display === 'none' || style.visibility === 'hidden') continue;
		try {
			el.scrollIntoView(true);
			el.click();
			clicked++;
		} catch (e) {}
	}
	return clicked;
}`

// DismissConsent scans the matcher tables and clicks everything visible
// that looks like a consent control. Absence of a banner is not an error;
// the return value only records whether anything was clicked.
func (c *Controller) DismissConsent(ctx context.Context, drv browser.Driver) bool {
	clicked := false

	for _, sel := range consentSelectors {
		els, err := drv.Elements(sel)
		if err != nil {
			continue
		}
		for _, el := range els {
			if !el.Visible() {
				continue
			}
			if err := el.ScrollIntoView(); err == nil {
				sleep(ctx, 200*time.Millisecond)
			}
			if err := el.Click(); err != nil {
				// forced script-level click as the single retry
				if _, evalErr := el.Eval(`() => this.click()`); evalErr != nil {
					continue
				}
			}
			clicked = true
			sleep(ctx, 500*time.Millisecond)
		}
	}

	res, err := drv.Eval(consentTextClickJS, consentTexts)
	if err != nil {
		slog.Debug("consent text scan failed", "error", err)
	} else if res.Int() > 0 {
		clicked = true
		sleep(ctx, 500*time.Millisecond)
	}

	if clicked {
		slog.Debug("consent control clicked")
	}
	return clicked
}
