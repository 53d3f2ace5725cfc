package dedupe

import (
	"log/slog"

	"github.com/pagepix/pagepix/models"
)

// Engine groups normalized candidates and picks one winner per group.
type Engine struct {
	cdnPrefixes []string
}

// NewEngine creates an Engine using the given CDN prefix list for host
// comparison during grouping.
func NewEngine(cdnPrefixes []string) *Engine {
	return &Engine{cdnPrefixes: cdnPrefixes}
}

// Dedupe partitions candidates into equivalence groups and returns exactly
// one member per group, the highest-scoring one, with first-encountered winning
// ties. Candidates with unparseable URLs survive untouched as singletons.
// Output order follows map iteration and is not stable across runs.
func (e *Engine) Dedupe(candidates []models.ImageCandidate) []models.ImageCandidate {
	if len(candidates) == 0 {
		return nil
	}

	groups := make(map[groupKey][]models.ImageCandidate)
	var singletons []models.ImageCandidate

	for _, c := range candidates {
		key, ok := keyFor(c.URL, c.AltText, e.cdnPrefixes)
		if !ok {
			singletons = append(singletons, c)
			continue
		}
		groups[key] = append(groups[key], c)
	}

	result := make([]models.ImageCandidate, 0, len(groups)+len(singletons))
	for _, members := range groups {
		result = append(result, selectBest(members))
	}
	result = append(result, singletons...)

	slog.Debug("deduplicated candidates",
		"input", len(candidates),
		"groups", len(groups),
		"output", len(result),
	)
	return result
}

// selectBest returns the highest-scoring member. A strictly-greater
// comparison keeps the first-encountered candidate on ties.
func selectBest(members []models.ImageCandidate) models.ImageCandidate {
	best := members[0]
	bestScore := Score(best)
	for _, m := range members[1:] {
		if s := Score(m); s > bestScore {
			best, bestScore = m, s
		}
	}
	return best
}
