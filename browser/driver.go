// Package browser owns the headless browser lifecycle and exposes the
// narrow driver surface the extraction pipeline needs. Collector and
// readiness code depend only on the Driver and Element interfaces so they
// can run against a fake in tests.
package browser

import (
	"github.com/ysmood/gson"
)

// Driver is the command surface of one browser tab. All calls are
// serialized against the underlying tab; only one command may be in flight
// at a time. The frame context entered via EnterFrame is session-global
// mutable state; callers must restore it with DefaultContent on every exit
// path (see FrameScope).
type Driver interface {
	// Navigate issues a navigation to url. It returns when the navigation
	// has been accepted, not when the page is ready.
	Navigate(url string) error

	// CurrentURL returns the page's current location.
	CurrentURL() string

	// Eval runs js (a function expression) in the current frame context
	// and returns its result.
	Eval(js string, args ...interface{}) (gson.JSON, error)

	// Elements returns handles for all nodes matching the CSS selector in
	// the current frame context.
	Elements(selector string) ([]Element, error)

	// EnterFrame switches the session context into the embedded frame
	// represented by el. Subsequent Eval/Elements calls target the frame.
	EnterFrame(el Element) error

	// DefaultContent restores the session context to the top document.
	DefaultContent() error

	// HTML returns the rendered markup of the current frame context.
	HTML() (string, error)
}

// Element is a handle to one DOM node.
type Element interface {
	// Attr returns the attribute value and whether it is present.
	Attr(name string) (string, bool)

	// Text returns the node's visible text.
	Text() string

	// Visible reports whether the node is rendered and on-screen.
	Visible() bool

	// Click dispatches a real mouse click on the node.
	Click() error

	// ScrollIntoView scrolls the node into the viewport.
	ScrollIntoView() error

	// Eval runs js with `this` bound to the node.
	Eval(js string, args ...interface{}) (gson.JSON, error)

	// Elements returns handles matching the selector inside this node.
	Elements(selector string) ([]Element, error)
}
