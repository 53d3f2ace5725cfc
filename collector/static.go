package collector

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pagepix/pagepix/models"
)

// Background declarations in embedded style sheets. The shorthand and the
// longhand family both allow url(...) anywhere in the value.
var styleSheetBgRes = []*regexp.Regexp{
	regexp.MustCompile(`background-image:\s*url\(['"]?(.*?)['"]?\)`),
	regexp.MustCompile(`background:\s*.*?url\(['"]?(.*?)['"]?\)`),
	regexp.MustCompile(`background-[a-z]+:\s*.*?url\(['"]?(.*?)['"]?\)`),
}

// staticScan parses the rendered markup once and extracts what live element
// queries cannot reach cheaply: <picture> alternative sources and
// document-level style rules.
type staticScan struct {
	label string
}

func (s *staticScan) name() string { return s.label }

func (s *staticScan) run(r *run) error {
	html, err := r.drv.HTML()
	if err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return err
	}

	doc.Find(r.scoped("picture source")).Each(func(_ int, sel *goquery.Selection) {
		srcset, ok := sel.Attr("srcset")
		if !ok || srcset == "" {
			return
		}
		alt, title, aria := "", "", ""
		if img := sel.Closest("picture").Find("img"); img.Length() > 0 {
			alt = img.AttrOr("alt", "")
			title = img.AttrOr("title", "")
			aria = img.AttrOr("aria-label", "")
		}
		for _, u := range parseSrcset(srcset) {
			r.add(models.ImageCandidate{
				URL:        u,
				AltText:    alt,
				TitleText:  title,
				AriaLabel:  aria,
				SourceKind: models.SourcePicture,
			})
		}
	})

	doc.Find("style").Each(func(_ int, sel *goquery.Selection) {
		css := sel.Text()
		if !strings.Contains(css, "url(") {
			return
		}
		for _, re := range styleSheetBgRes {
			for _, m := range re.FindAllStringSubmatch(css, -1) {
				r.add(models.ImageCandidate{
					URL:        m[1],
					SourceKind: models.SourceBackground,
				})
			}
		}
	})

	return nil
}
