package dedupe

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pagepix/pagepix/models"
)

var dimensionRe = regexp.MustCompile(`(\d+)x(\d+)`)

// Score computes the ranking score of a candidate within its group. Higher
// wins. The weights are a hand-tuned heuristic favoring medium-resolution,
// richly annotated, non-background sources; keep them in sync with the
// table below when revisiting:
//
//	alt > 3 chars            +10    title > 3 chars          +5
//	direct-img               +15    responsive-srcset        +10
//	background family        +5
//	WxH width 800-1200       +20    500-799                  +15
//	1201-1600                +10    300-499                  +5
//	>1600                    +3
//	"large" in URL           +8     "medium" in URL          +12
//	"small"/"thumb(nail)"    -5     @2x/@3x                  -3
//	.jpg/.jpeg/.png          +5     .webp                    +3
func Score(c models.ImageCandidate) int {
	score := 0
	lower := strings.ToLower(c.URL)

	if len(c.AltText) > 3 {
		score += 10
	}
	if len(c.TitleText) > 3 {
		score += 5
	}

	switch {
	case c.SourceKind == models.SourceImg:
		score += 15
	case c.SourceKind == models.SourceSrcset:
		score += 10
	case c.SourceKind.IsBackground():
		score += 5
	}

	if m := dimensionRe.FindStringSubmatch(c.URL); m != nil {
		if width, err := strconv.Atoi(m[1]); err == nil {
			switch {
			case width >= 800 && width <= 1200:
				score += 20
			case width >= 500 && width < 800:
				score += 15
			case width > 1200 && width <= 1600:
				score += 10
			case width >= 300 && width < 500:
				score += 5
			case width > 1600:
				score += 3
			}
		}
	}

	switch {
	case strings.Contains(lower, "large"):
		score += 8
	case strings.Contains(lower, "medium"):
		score += 12
	case strings.Contains(lower, "small"),
		strings.Contains(lower, "thumbnail"),
		strings.Contains(lower, "thumb"):
		score -= 5
	}

	if strings.Contains(c.URL, "@2x") || strings.Contains(c.URL, "@3x") {
		score -= 3
	}

	switch {
	case strings.HasSuffix(lower, ".jpg"),
		strings.HasSuffix(lower, ".jpeg"),
		strings.HasSuffix(lower, ".png"):
		score += 5
	case strings.HasSuffix(lower, ".webp"):
		score += 3
	}

	return score
}
