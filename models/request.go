package models

// ExtractRequest is the payload for POST /api/v1/images and /api/v1/page.
type ExtractRequest struct {
	// URL is the target page. Required.
	URL string `json:"url" binding:"required,url"`

	// Timeout is the maximum duration in seconds for the entire run
	// (readiness + collection + dedupe). Default: 60. Max: 180.
	Timeout int `json:"timeout,omitempty" binding:"omitempty,min=1,max=180"`

	// Stealth enables anti-bot-detection evasions before navigation.
	// Default: false.
	Stealth bool `json:"stealth,omitempty"`

	// CheckIframes controls whether embedded frames are entered and
	// scanned for candidates. Default: true.
	CheckIframes *bool `json:"check_iframes,omitempty"`

	// CheckShadowDOM controls whether shadow-encapsulated subtrees are
	// scanned. Default: true.
	CheckShadowDOM *bool `json:"check_shadow_dom,omitempty"`

	// ProbeSizes enables HTTP size probing of the surviving candidates.
	// Default: false.
	ProbeSizes bool `json:"probe_sizes,omitempty"`

	// MinSizeBytes drops probed candidates smaller than this many bytes.
	// Only effective together with ProbeSizes; unprobed candidates are
	// never dropped by it.
	MinSizeBytes int64 `json:"min_size_bytes,omitempty" binding:"omitempty,min=0"`

	// CSSSelector optionally scopes the static-markup scan to the matched
	// elements' subtree.
	CSSSelector string `json:"css_selector,omitempty"`

	// Screenshot requests a full-page screenshot after readiness
	// (only honored by /api/v1/page).
	Screenshot bool `json:"screenshot,omitempty"`

	// Content requests title/headline/text extraction
	// (only honored by /api/v1/page).
	Content bool `json:"content,omitempty"`

	// MaxAge, in milliseconds, allows serving a cached response no older
	// than this. 0 disables cache lookup.
	MaxAge int `json:"max_age,omitempty" binding:"omitempty,min=0"`
}

// Defaults applies default values to unset fields.
func (r *ExtractRequest) Defaults() {
	if r.Timeout == 0 {
		r.Timeout = 60
	}
	if r.CheckIframes == nil {
		t := true
		r.CheckIframes = &t
	}
	if r.CheckShadowDOM == nil {
		t := true
		r.CheckShadowDOM = &t
	}
}
