package collector

import (
	"regexp"
	"strings"

	"github.com/pagepix/pagepix/models"
)

// attrRead binds one URL-bearing attribute name to the source kind its
// values get tagged with.
type attrRead struct {
	name   string
	kind   models.SourceKind
	srcset bool
}

// imgAttrs covers the primary source plus the lazy-load aliases seen in the
// wild. data-srcset piggybacks on srcset parsing.
var imgAttrs = []attrRead{
	{name: "src", kind: models.SourceImg},
	{name: "srcset", kind: models.SourceSrcset, srcset: true},
	{name: "data-srcset", kind: models.SourceSrcset, srcset: true},
	{name: "data-src", kind: models.SourceLazyAttr},
	{name: "data-lazy-src", kind: models.SourceLazyAttr},
	{name: "data-cdn", kind: models.SourceLazyAttr},
	{name: "data-original", kind: models.SourceLazyAttr},
	{name: "data-bg", kind: models.SourceLazyAttr},
	{name: "data-background", kind: models.SourceLazyAttr},
	{name: "data-poster", kind: models.SourceLazyAttr},
	{name: "data-src-retina", kind: models.SourceLazyAttr},
	{name: "data-lazy-original", kind: models.SourceLazyAttr},
	{name: "data-echo", kind: models.SourceLazyAttr},
	{name: "data-img-url", kind: models.SourceLazyAttr},
	{name: "data-delay-src", kind: models.SourceLazyAttr},
	{name: "data-hero", kind: models.SourceLazyAttr},
	{name: "data-low-res-src", kind: models.SourceLazyAttr},
	{name: "data-path", kind: models.SourceLazyAttr},
	{name: "data-thumbs", kind: models.SourceLazyAttr},
	{name: "data-l", kind: models.SourceLazyAttr},
	{name: "data-m", kind: models.SourceLazyAttr},
	{name: "data-xl", kind: models.SourceLazyAttr},
	{name: "data-xxl", kind: models.SourceLazyAttr},
}

// urlRe matches every url(...) occurrence in a style declaration; an
// element may layer multiple backgrounds.
var urlRe = regexp.MustCompile(`url\(['"]?(.*?)['"]?\)`)

// elementScan reads URL-bearing attributes from every node matching a
// selector. The frame and shadow passes reuse it with their own attribute
// kinds and a decorate hook for provenance tagging.
type elementScan struct {
	label    string
	selector string
	attrs    []attrRead
	unscoped bool
	decorate func(*models.ImageCandidate)
}

func (s *elementScan) name() string { return s.label }

func (s *elementScan) run(r *run) error {
	sel := s.selector
	if !s.unscoped {
		sel = r.scoped(sel)
	}
	els, err := r.drv.Elements(sel)
	if err != nil {
		return err
	}
	for _, el := range els {
		alt, _ := el.Attr("alt")
		title, _ := el.Attr("title")
		aria, _ := el.Attr("aria-label")
		for _, a := range s.attrs {
			v, ok := el.Attr(a.name)
			if !ok || v == "" {
				continue
			}
			urls := []string{v}
			if a.srcset {
				urls = parseSrcset(v)
			}
			for _, u := range urls {
				c := models.ImageCandidate{
					URL:        u,
					AltText:    alt,
					TitleText:  title,
					AriaLabel:  aria,
					SourceKind: a.kind,
				}
				if s.decorate != nil {
					s.decorate(&c)
				}
				r.add(c)
			}
		}
	}
	return nil
}

// styleScan pulls url(...) references out of inline style attributes.
type styleScan struct {
	label    string
	selector string
	kind     models.SourceKind
	unscoped bool
	decorate func(*models.ImageCandidate)
}

func (s *styleScan) name() string { return s.label }

func (s *styleScan) run(r *run) error {
	sel := s.selector
	if !s.unscoped {
		sel = r.scoped(sel)
	}
	els, err := r.drv.Elements(sel)
	if err != nil {
		return err
	}
	for _, el := range els {
		style, ok := el.Attr("style")
		if !ok || !strings.Contains(style, "url(") {
			continue
		}
		alt, _ := el.Attr("alt")
		if alt == "" {
			alt, _ = el.Attr("title")
		}
		if alt == "" {
			alt, _ = el.Attr("aria-label")
		}
		title, _ := el.Attr("title")
		aria, _ := el.Attr("aria-label")
		for _, m := range urlRe.FindAllStringSubmatch(style, -1) {
			c := models.ImageCandidate{
				URL:        m[1],
				AltText:    alt,
				TitleText:  title,
				AriaLabel:  aria,
				SourceKind: s.kind,
			}
			if s.decorate != nil {
				s.decorate(&c)
			}
			r.add(c)
		}
	}
	return nil
}

// galleryAttrs are the "full/large/original/thumb" aliases galleries stash
// image URLs in. data-i and data-id often hold bare identifiers, hence the
// plausibility check in galleryScan.
var galleryAttrs = []string{
	"data-src", "data-full", "data-image", "data-lazy", "data-thumb",
	"data-large", "data-medium", "data-original", "data-slide-bg",
	"data-bg", "data-background", "data-hero-image", "data-i", "data-id",
}

// urlishAttrs accept any value; the rest require a path-looking string.
var urlishAttrs = map[string]bool{
	"data-src":   true,
	"data-image": true,
	"data-full":  true,
}

const gallerySelector = `[class*="gallery"],[class*="slider"],[class*="carousel"],` +
	`[id*="gallery"],[id*="slider"],[id*="carousel"]`

// galleryScan reads the data-attribute aliases inside gallery, slider and
// carousel containers.
type galleryScan struct {
	label string
}

func (s *galleryScan) name() string { return s.label }

func (s *galleryScan) run(r *run) error {
	galleries, err := r.drv.Elements(r.scoped(gallerySelector))
	if err != nil {
		return err
	}
	var attrQuery strings.Builder
	for i, a := range galleryAttrs {
		if i > 0 {
			attrQuery.WriteByte(',')
		}
		attrQuery.WriteString("[" + a + "]")
	}
	for _, gallery := range galleries {
		items, err := gallery.Elements(attrQuery.String())
		if err != nil {
			continue
		}
		for _, el := range items {
			alt, _ := el.Attr("alt")
			title, _ := el.Attr("title")
			aria, _ := el.Attr("aria-label")
			if alt == "" {
				alt = title
			}
			if alt == "" {
				alt = aria
			}
			for _, attr := range galleryAttrs {
				v, ok := el.Attr(attr)
				if !ok || v == "" {
					continue
				}
				if !urlishAttrs[attr] && !strings.ContainsAny(v, "/.") {
					continue
				}
				r.add(models.ImageCandidate{
					URL:        v,
					AltText:    alt,
					TitleText:  title,
					AriaLabel:  aria,
					SourceKind: models.SourceGallery,
				})
			}
		}
	}
	return nil
}

const sliderSelector = `[class*="swiper"],[class*="slick"],[class*="owl"]`

// sliderScan targets the common slider libraries and reads both the slide
// images and slide background declarations.
type sliderScan struct {
	label string
}

func (s *sliderScan) name() string { return s.label }

func (s *sliderScan) run(r *run) error {
	sliders, err := r.drv.Elements(r.scoped(sliderSelector))
	if err != nil {
		return err
	}
	for _, slider := range sliders {
		slides, err := slider.Elements(`[class*="slide"],[class*="item"]`)
		if err != nil {
			continue
		}
		for _, slide := range slides {
			imgs, err := slide.Elements("img")
			if err == nil {
				for _, img := range imgs {
					src, ok := img.Attr("src")
					if !ok || src == "" {
						continue
					}
					alt, _ := img.Attr("alt")
					title, _ := img.Attr("title")
					aria, _ := img.Attr("aria-label")
					r.add(models.ImageCandidate{
						URL:        src,
						AltText:    alt,
						TitleText:  title,
						AriaLabel:  aria,
						SourceKind: models.SourceSlider,
					})
				}
			}
			style, ok := slide.Attr("style")
			if !ok || !strings.Contains(style, "url(") {
				continue
			}
			alt, _ := slide.Attr("alt")
			if alt == "" {
				alt, _ = slide.Attr("title")
			}
			title, _ := slide.Attr("title")
			aria, _ := slide.Attr("aria-label")
			for _, m := range urlRe.FindAllStringSubmatch(style, -1) {
				r.add(models.ImageCandidate{
					URL:        m[1],
					AltText:    alt,
					TitleText:  title,
					AriaLabel:  aria,
					SourceKind: models.SourceSlider,
				})
			}
		}
	}
	return nil
}
