package browser

import (
	"errors"
	"log/slog"
)

// ErrNotFrame is returned when EnterFrame is given an element handle that
// does not wrap an iframe node.
var ErrNotFrame = errors.New("browser: element is not a frame")

// FrameScope enters a frame and guarantees the session context is restored
// to the top document when Close runs, no matter how the caller exits.
//
//	scope, err := browser.EnterFrameScope(drv, frameEl, pageURL)
//	if err != nil { ... }
//	defer scope.Close()
type FrameScope struct {
	drv     Driver
	pageURL string
	done    bool
}

// EnterFrameScope switches drv into the frame behind el. On failure the
// context is left at the top document and the error is returned.
func EnterFrameScope(drv Driver, el Element, pageURL string) (*FrameScope, error) {
	if err := drv.EnterFrame(el); err != nil {
		if rerr := drv.DefaultContent(); rerr != nil {
			slog.Warn("frame context restore failed after failed switch",
				"url", pageURL, "error", rerr)
		}
		return nil, err
	}
	return &FrameScope{drv: drv, pageURL: pageURL}, nil
}

// Close restores the top document context. Safe to call more than once.
func (s *FrameScope) Close() {
	if s == nil || s.done {
		return
	}
	s.done = true
	if err := s.drv.DefaultContent(); err != nil {
		slog.Warn("frame context restore failed", "url", s.pageURL, "error", err)
	}
}
