package collector

import (
	"github.com/pagepix/pagepix/models"
)

// shadowScanJS walks the first hostLimit elements looking for attached
// shadow roots and returns the image references found inside them. Shadow
// trees are invisible to top-level selector queries, so this runs entirely
// in page script.
const shadowScanJS = `(limit) => {
	const out = [];
	const hosts = document.querySelectorAll('*');
	const n = Math.min(hosts.length, limit);
	for (let i = 0; i < n; i++) {
		const root = hosts[i].shadowRoot;
		if (!root) continue;
		for (const img of root.querySelectorAll('img')) {
			const src = img.getAttribute('src') || '';
			const dataSrc = img.getAttribute('data-src') || '';
			for (const url of [src, dataSrc]) {
				if (!url) continue;
				out.push({
					url: url,
					alt: img.getAttribute('alt') || '',
					title: img.getAttribute('title') || '',
					bg: false,
				});
			}
		}
		for (const el of root.querySelectorAll('*[style*="background"]')) {
			const style = el.getAttribute('style') || '';
			for (const m of style.matchAll(/url\(['"]?(.*?)['"]?\)/g)) {
				if (!m[1]) continue;
				out.push({url: m[1], alt: '', title: '', bg: true});
			}
		}
	}
	return out;
}`

// shadowScan collects from shadow-encapsulated subtrees.
type shadowScan struct {
	label     string
	hostLimit int
}

func (s *shadowScan) name() string { return s.label }

func (s *shadowScan) run(r *run) error {
	res, err := r.drv.Eval(shadowScanJS, s.hostLimit)
	if err != nil {
		return err
	}
	for _, item := range res.Arr() {
		kind := models.SourceShadowImg
		if item.Get("bg").Bool() {
			kind = models.SourceShadowBg
		}
		r.add(models.ImageCandidate{
			URL:            item.Get("url").Str(),
			AltText:        item.Get("alt").Str(),
			TitleText:      item.Get("title").Str(),
			SourceKind:     kind,
			FromShadowTree: true,
		})
	}
	return nil
}
