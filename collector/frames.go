package collector

import (
	"log/slog"
	"strings"

	"github.com/pagepix/pagepix/browser"
	"github.com/pagepix/pagepix/models"
)

// frameImgAttrs is the reduced attribute set read inside embedded frames.
var frameImgAttrs = []attrRead{
	{name: "src", kind: models.SourceIframeImg},
	{name: "srcset", kind: models.SourceIframeImg, srcset: true},
	{name: "data-srcset", kind: models.SourceIframeImg, srcset: true},
	{name: "data-src", kind: models.SourceIframeImg},
	{name: "data-lazy-src", kind: models.SourceIframeImg},
	{name: "data-cdn", kind: models.SourceIframeImg},
	{name: "data-original", kind: models.SourceIframeImg},
}

// frameScan descends into each embedded frame with a resolvable source and
// runs the media and background scans inside it. The driver's frame context
// is session-global state, so the scope guard restores the top document on
// every exit path, including when a frame throws mid-scan.
type frameScan struct {
	label string
}

func (s *frameScan) name() string { return s.label }

func (s *frameScan) run(r *run) error {
	frames, err := r.drv.Elements(r.scoped("iframe"))
	if err != nil {
		return err
	}
	for _, frame := range frames {
		src, ok := frame.Attr("src")
		src = strings.TrimSpace(src)
		if !ok || src == "" || src == "about:blank" {
			continue
		}
		if err := s.scanFrame(r, frame, src); err != nil {
			slog.Debug("frame scan failed", "frameURL", src, "error", err)
		}
	}
	return nil
}

func (s *frameScan) scanFrame(r *run, frame browser.Element, frameURL string) error {
	scope, err := browser.EnterFrameScope(r.drv, frame, frameURL)
	if err != nil {
		return err
	}
	defer scope.Close()

	decorate := func(c *models.ImageCandidate) {
		c.FromFrame = true
		c.FrameURL = frameURL
	}
	inner := []strategy{
		&elementScan{label: "frame-img", selector: "img", attrs: frameImgAttrs,
			unscoped: true, decorate: decorate},
		&styleScan{label: "frame-backgrounds", selector: `[style*="background"]`,
			kind: models.SourceIframeBg, unscoped: true, decorate: decorate},
	}
	for _, st := range inner {
		if err := st.run(r); err != nil {
			slog.Debug("frame strategy failed", "strategy", st.name(),
				"frameURL", frameURL, "error", err)
		}
	}
	return nil
}
