package browser

import (
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/pagepix/pagepix/config"
)

// Session is the rod-backed Driver over one pooled tab. The current frame
// context is plain mutable state on the session, mirroring how the protocol
// treats it: every command goes to whichever document EnterFrame last
// selected.
type Session struct {
	root    *rod.Page
	current *rod.Page
	cfg     config.BrowserConfig
}

var _ Driver = (*Session)(nil)

func newSession(page *rod.Page, cfg config.BrowserConfig) *Session {
	return &Session{root: page, current: page, cfg: cfg}
}

func (s *Session) Navigate(url string) error {
	return s.root.Navigate(url)
}

func (s *Session) CurrentURL() string {
	res, err := s.root.Eval(`() => window.location.href`)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func (s *Session) Eval(js string, args ...interface{}) (gson.JSON, error) {
	res, err := s.current.Eval(js, args...)
	if err != nil {
		return gson.New(nil), err
	}
	return res.Value, nil
}

func (s *Session) Elements(selector string) ([]Element, error) {
	els, err := s.current.Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapElements(els), nil
}

func (s *Session) EnterFrame(el Element) error {
	re, ok := el.(*rodElement)
	if !ok {
		return ErrNotFrame
	}
	frame, err := re.el.Frame()
	if err != nil {
		return err
	}
	s.current = frame
	return nil
}

func (s *Session) DefaultContent() error {
	s.current = s.root
	return nil
}

func (s *Session) HTML() (string, error) {
	return s.current.HTML()
}

// rodElement adapts *rod.Element to the Element interface, swallowing the
// per-read errors rod reports; a detached node simply reads as absent.
type rodElement struct {
	el *rod.Element
}

var _ Element = (*rodElement)(nil)

func wrapElements(els rod.Elements) []Element {
	out := make([]Element, len(els))
	for i, el := range els {
		out[i] = &rodElement{el: el}
	}
	return out
}

func (r *rodElement) Attr(name string) (string, bool) {
	v, err := r.el.Attribute(name)
	if err != nil || v == nil {
		return "", false
	}
	return *v, true
}

func (r *rodElement) Text() string {
	t, err := r.el.Text()
	if err != nil {
		return ""
	}
	return t
}

func (r *rodElement) Visible() bool {
	v, err := r.el.Visible()
	return err == nil && v
}

func (r *rodElement) Click() error {
	return r.el.Click(proto.InputMouseButtonLeft, 1)
}

func (r *rodElement) ScrollIntoView() error {
	return r.el.ScrollIntoView()
}

func (r *rodElement) Eval(js string, args ...interface{}) (gson.JSON, error) {
	res, err := r.el.Eval(js, args...)
	if err != nil {
		return gson.New(nil), err
	}
	return res.Value, nil
}

func (r *rodElement) Elements(selector string) ([]Element, error) {
	els, err := r.el.Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapElements(els), nil
}
