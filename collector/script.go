package collector

import (
	"github.com/pagepix/pagepix/models"
)

// scriptScanJS walks well-known global state containers for strings that
// look like image file paths. Best effort; bounded depth and result count
// keep it from drowning in framework state.
const scriptScanJS = `() => {
	const found = [];

	function walk(obj, depth) {
		if (depth > 5 || obj == null || found.length >= 200) return;
		if (typeof obj === 'string') {
			if (/\.(jpg|jpeg|png|gif|webp|svg)(\?.*)?$/i.test(obj)) {
				found.push(obj);
			}
			return;
		}
		if (Array.isArray(obj)) {
			for (const item of obj) walk(item, depth + 1);
			return;
		}
		if (typeof obj === 'object') {
			for (const key in obj) {
				if (/(image|img|thumb|src|source|url|background)/i.test(key)) {
					walk(obj[key], depth + 1);
				} else if (found.length < 100) {
					walk(obj[key], depth + 1);
				}
			}
		}
	}

	const wellKnown = ['images', 'gallery', 'photos', 'slides',
		'carouselItems', 'productImages', 'thumbnails'];
	for (const name of wellKnown) {
		if (window[name]) walk(window[name], 0);
	}
	for (const name in window) {
		if (found.length >= 200) break;
		if (/(image|img|gallery|slide|carousel|media)/i.test(name)) {
			try { walk(window[name], 0); } catch (e) {}
		}
	}
	return found;
}`

// scriptScan pulls image URLs from script-exposed page state. False
// positives are acceptable here; scoring handles low-confidence sources.
type scriptScan struct {
	label string
}

func (s *scriptScan) name() string { return s.label }

func (s *scriptScan) run(r *run) error {
	res, err := r.drv.Eval(scriptScanJS)
	if err != nil {
		return err
	}
	for _, item := range res.Arr() {
		r.add(models.ImageCandidate{
			URL:        item.Str(),
			SourceKind: models.SourceScript,
		})
	}
	return nil
}
