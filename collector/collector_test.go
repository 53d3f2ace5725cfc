package collector

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ysmood/gson"

	"github.com/pagepix/pagepix/browser"
	"github.com/pagepix/pagepix/config"
	"github.com/pagepix/pagepix/models"
)

// fakeElement implements browser.Element for tests.
type fakeElement struct {
	attrs    map[string]string
	children map[string][]browser.Element
}

func (e *fakeElement) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

func (e *fakeElement) Text() string          { return "" }
func (e *fakeElement) Visible() bool         { return true }
func (e *fakeElement) Click() error          { return nil }
func (e *fakeElement) ScrollIntoView() error { return nil }

func (e *fakeElement) Eval(js string, args ...interface{}) (gson.JSON, error) {
	return gson.New(nil), nil
}

func (e *fakeElement) Elements(selector string) ([]browser.Element, error) {
	return e.children[selector], nil
}

// fakeDriver implements browser.Driver over canned element sets. Frame
// context is tracked so tests can assert it was restored.
type fakeDriver struct {
	elements      map[string][]browser.Element
	frameElements map[string][]browser.Element
	frameErr      error
	shadowResult  interface{}
	scriptResult  interface{}
	html          string
	inFrame       bool
}

func (d *fakeDriver) Navigate(url string) error { return nil }
func (d *fakeDriver) CurrentURL() string        { return "https://example.com/page" }

func (d *fakeDriver) Eval(js string, args ...interface{}) (gson.JSON, error) {
	if strings.Contains(js, "shadowRoot") {
		return gson.New(d.shadowResult), nil
	}
	return gson.New(d.scriptResult), nil
}

func (d *fakeDriver) Elements(selector string) ([]browser.Element, error) {
	if d.inFrame {
		if d.frameErr != nil {
			return nil, d.frameErr
		}
		return d.frameElements[selector], nil
	}
	return d.elements[selector], nil
}

func (d *fakeDriver) EnterFrame(el browser.Element) error {
	d.inFrame = true
	return nil
}

func (d *fakeDriver) DefaultContent() error {
	d.inFrame = false
	return nil
}

func (d *fakeDriver) HTML() (string, error) { return d.html, nil }

func testConfig() config.CollectorConfig {
	return config.CollectorConfig{
		CheckIframes:    true,
		CheckShadowDOM:  true,
		ShadowHostLimit: 100,
		CDNPrefixes:     []string{"cdn", "img", "images", "static", "media", "assets"},
	}
}

func collectAll(t *testing.T, d *fakeDriver) []models.ImageCandidate {
	t.Helper()
	c := New(testConfig())
	return c.Collect(d, Options{CheckIframes: true, CheckShadowDOM: true})
}

func urlsOf(cands []models.ImageCandidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.URL
	}
	return out
}

func findByURL(cands []models.ImageCandidate, url string) (models.ImageCandidate, bool) {
	for _, c := range cands {
		if c.URL == url {
			return c, true
		}
	}
	return models.ImageCandidate{}, false
}

func TestCollectImgElements(t *testing.T) {
	d := &fakeDriver{
		elements: map[string][]browser.Element{
			"img": {
				&fakeElement{attrs: map[string]string{
					"src": "/hero.jpg",
					"alt": "hero shot",
				}},
				&fakeElement{attrs: map[string]string{
					"data-src": "/lazy.png",
				}},
				&fakeElement{attrs: map[string]string{
					"srcset": "/a-480w.jpg 480w, /a-800w.jpg 800w",
				}},
				&fakeElement{attrs: map[string]string{
					"src": "data:image/png;base64,AAAA",
				}},
				// literal duplicate of the first element
				&fakeElement{attrs: map[string]string{
					"src": "/hero.jpg",
				}},
			},
		},
	}

	got := collectAll(t, d)

	hero, ok := findByURL(got, "/hero.jpg")
	if !ok {
		t.Fatalf("missing /hero.jpg in %v", urlsOf(got))
	}
	if hero.SourceKind != models.SourceImg || hero.AltText != "hero shot" {
		t.Errorf("hero = %+v", hero)
	}

	lazy, ok := findByURL(got, "/lazy.png")
	if !ok || lazy.SourceKind != models.SourceLazyAttr {
		t.Errorf("lazy candidate wrong: %+v ok=%v", lazy, ok)
	}

	for _, u := range []string{"/a-480w.jpg", "/a-800w.jpg"} {
		c, ok := findByURL(got, u)
		if !ok || c.SourceKind != models.SourceSrcset {
			t.Errorf("srcset candidate %s wrong: %+v ok=%v", u, c, ok)
		}
	}

	for _, c := range got {
		if strings.HasPrefix(c.URL, "data:") {
			t.Errorf("data: URL leaked: %s", c.URL)
		}
	}

	// the duplicate literal must have been suppressed
	count := 0
	for _, c := range got {
		if c.URL == "/hero.jpg" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("duplicate suppression failed, /hero.jpg appears %d times", count)
	}
}

func TestCollectInlineBackgrounds(t *testing.T) {
	d := &fakeDriver{
		elements: map[string][]browser.Element{
			`[style*="background"]`: {
				&fakeElement{attrs: map[string]string{
					"style": `background-image: url('/bg-one.jpg'), url("/bg-two.webp")`,
					"title": "layered",
				}},
			},
		},
	}

	got := collectAll(t, d)

	for _, u := range []string{"/bg-one.jpg", "/bg-two.webp"} {
		c, ok := findByURL(got, u)
		if !ok {
			t.Fatalf("missing %s in %v", u, urlsOf(got))
		}
		if c.SourceKind != models.SourceBackground {
			t.Errorf("%s kind = %s", u, c.SourceKind)
		}
		if c.AltText != "layered" {
			t.Errorf("%s alt fallback = %q, want title text", u, c.AltText)
		}
	}
}

func TestCollectStaticMarkup(t *testing.T) {
	d := &fakeDriver{
		html: `<html><head><style>
			.hero { background-image: url('/sheet-bg.png'); }
			.card { background: #fff url("/card.jpg") no-repeat; }
		</style></head><body>
		<picture>
			<source srcset="/pic-small.webp 480w, /pic-large.webp 1200w">
			<img src="/pic.jpg" alt="scenic view">
		</picture>
		</body></html>`,
	}

	got := collectAll(t, d)

	for _, u := range []string{"/pic-small.webp", "/pic-large.webp"} {
		c, ok := findByURL(got, u)
		if !ok || c.SourceKind != models.SourcePicture {
			t.Fatalf("picture source %s wrong: %+v ok=%v", u, c, ok)
		}
		if c.AltText != "scenic view" {
			t.Errorf("picture alt = %q", c.AltText)
		}
	}
	for _, u := range []string{"/sheet-bg.png", "/card.jpg"} {
		c, ok := findByURL(got, u)
		if !ok || c.SourceKind != models.SourceBackground {
			t.Errorf("style sheet background %s wrong: %+v ok=%v", u, c, ok)
		}
	}
}

func TestCollectGallery(t *testing.T) {
	item := &fakeElement{attrs: map[string]string{
		"data-full": "/gallery/full.jpg",
		"data-id":   "12345", // bare identifier, not a URL
		"title":     "gallery item",
	}}
	attrQuery := "[data-src],[data-full],[data-image],[data-lazy],[data-thumb]," +
		"[data-large],[data-medium],[data-original],[data-slide-bg]," +
		"[data-bg],[data-background],[data-hero-image],[data-i],[data-id]"
	gallery := &fakeElement{
		attrs:    map[string]string{"class": "product-gallery"},
		children: map[string][]browser.Element{attrQuery: {item}},
	}
	d := &fakeDriver{
		elements: map[string][]browser.Element{
			gallerySelector: {gallery},
		},
	}

	got := collectAll(t, d)

	c, ok := findByURL(got, "/gallery/full.jpg")
	if !ok || c.SourceKind != models.SourceGallery {
		t.Fatalf("gallery candidate wrong: %+v ok=%v", c, ok)
	}
	if c.AltText != "gallery item" {
		t.Errorf("gallery alt fallback = %q", c.AltText)
	}
	if _, ok := findByURL(got, "12345"); ok {
		t.Error("bare data-id value must not become a candidate")
	}
}

func TestCollectSliders(t *testing.T) {
	img := &fakeElement{attrs: map[string]string{"src": "/slide-1.jpg", "alt": "first"}}
	slide := &fakeElement{
		attrs:    map[string]string{"style": "background: url(/slide-bg.jpg)"},
		children: map[string][]browser.Element{"img": {img}},
	}
	slider := &fakeElement{
		attrs:    map[string]string{"class": "swiper"},
		children: map[string][]browser.Element{`[class*="slide"],[class*="item"]`: {slide}},
	}
	d := &fakeDriver{
		elements: map[string][]browser.Element{
			sliderSelector: {slider},
		},
	}

	got := collectAll(t, d)

	for _, u := range []string{"/slide-1.jpg", "/slide-bg.jpg"} {
		c, ok := findByURL(got, u)
		if !ok || c.SourceKind != models.SourceSlider {
			t.Errorf("slider candidate %s wrong: %+v ok=%v", u, c, ok)
		}
	}
}

func TestCollectShadowTrees(t *testing.T) {
	d := &fakeDriver{
		shadowResult: []map[string]interface{}{
			{"url": "/shadow-img.png", "alt": "inside", "title": "", "bg": false},
			{"url": "/shadow-bg.jpg", "alt": "", "title": "", "bg": true},
		},
	}

	got := collectAll(t, d)

	img, ok := findByURL(got, "/shadow-img.png")
	if !ok || img.SourceKind != models.SourceShadowImg || !img.FromShadowTree {
		t.Errorf("shadow img wrong: %+v ok=%v", img, ok)
	}
	bg, ok := findByURL(got, "/shadow-bg.jpg")
	if !ok || bg.SourceKind != models.SourceShadowBg || !bg.FromShadowTree {
		t.Errorf("shadow background wrong: %+v ok=%v", bg, ok)
	}
}

func TestCollectScriptGlobals(t *testing.T) {
	d := &fakeDriver{
		scriptResult: []string{"https://x.com/from-js.jpg"},
	}

	got := collectAll(t, d)

	c, ok := findByURL(got, "https://x.com/from-js.jpg")
	if !ok || c.SourceKind != models.SourceScript {
		t.Errorf("script candidate wrong: %+v ok=%v", c, ok)
	}
}

func TestCollectFrames(t *testing.T) {
	frame := &fakeElement{attrs: map[string]string{"src": "https://embed.example.com/w"}}
	d := &fakeDriver{
		elements: map[string][]browser.Element{
			"iframe": {frame},
		},
		frameElements: map[string][]browser.Element{
			"img": {&fakeElement{attrs: map[string]string{"src": "/in-frame.jpg"}}},
		},
	}

	got := collectAll(t, d)

	c, ok := findByURL(got, "/in-frame.jpg")
	if !ok {
		t.Fatalf("missing frame candidate in %v", urlsOf(got))
	}
	if c.SourceKind != models.SourceIframeImg || !c.FromFrame {
		t.Errorf("frame candidate wrong: %+v", c)
	}
	if c.FrameURL != "https://embed.example.com/w" {
		t.Errorf("frameURL = %q", c.FrameURL)
	}
	if d.inFrame {
		t.Error("frame context not restored after collection")
	}
}

func TestFrameFailureStillRestoresContext(t *testing.T) {
	frame := &fakeElement{attrs: map[string]string{"src": "https://embed.example.com/w"}}
	d := &fakeDriver{
		elements: map[string][]browser.Element{
			"iframe": {frame},
			"img":    {&fakeElement{attrs: map[string]string{"src": "/top.jpg"}}},
		},
		frameErr: errors.New("frame detached"),
	}

	got := collectAll(t, d)

	if d.inFrame {
		t.Fatal("frame context not restored after in-frame failure")
	}
	// a subsequent top-level query must target the outer document
	els, err := d.Elements("img")
	if err != nil || len(els) != 1 {
		t.Fatalf("top-level query after failed frame scan: els=%d err=%v", len(els), err)
	}
	if _, ok := findByURL(got, "/top.jpg"); !ok {
		t.Error("top-level candidates missing after frame failure")
	}
}

func TestCollectEmptyPage(t *testing.T) {
	d := &fakeDriver{html: "<html><body></body></html>"}

	got := collectAll(t, d)

	if len(got) != 0 {
		t.Errorf("empty page yielded %v", urlsOf(got))
	}
}

func TestCollectScope(t *testing.T) {
	d := &fakeDriver{
		elements: map[string][]browser.Element{
			"#main img": {&fakeElement{attrs: map[string]string{"src": "/scoped.jpg"}}},
			"img":       {&fakeElement{attrs: map[string]string{"src": "/unscoped.jpg"}}},
		},
	}

	c := New(testConfig())
	got := c.Collect(d, Options{Scope: "#main"})

	if _, ok := findByURL(got, "/scoped.jpg"); !ok {
		t.Errorf("scoped candidate missing from %v", urlsOf(got))
	}
	if _, ok := findByURL(got, "/unscoped.jpg"); ok {
		t.Error("scope was ignored")
	}
}

func TestValidateScope(t *testing.T) {
	if err := ValidateScope(""); err != nil {
		t.Errorf("empty scope: %v", err)
	}
	if err := ValidateScope("#main .gallery img"); err != nil {
		t.Errorf("valid scope: %v", err)
	}
	if err := ValidateScope("[unterminated"); err == nil {
		t.Error("invalid selector accepted")
	}
}

func TestParseSrcset(t *testing.T) {
	got := parseSrcset("/a-480w.jpg 480w, /a-800w.jpg 800w, /a.jpg 2x, /plain.png")
	want := []string{"/a-480w.jpg", "/a-800w.jpg", "/a.jpg", "/plain.png"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseSrcset = %v, want %v", got, want)
	}
}
