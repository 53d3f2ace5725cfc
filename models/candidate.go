package models

// SourceKind identifies the extraction strategy that produced a candidate.
type SourceKind string

const (
	SourceImg         SourceKind = "direct-img"
	SourceLazyAttr    SourceKind = "lazy-attr"
	SourceSrcset      SourceKind = "responsive-srcset"
	SourceBackground  SourceKind = "css-background"
	SourcePicture     SourceKind = "picture-source"
	SourceGallery     SourceKind = "gallery-attr"
	SourceSlider      SourceKind = "slider"
	SourceShadowImg   SourceKind = "shadow-dom-img"
	SourceShadowBg    SourceKind = "shadow-dom-background"
	SourceIframeImg   SourceKind = "iframe-img"
	SourceIframeBg    SourceKind = "iframe-background"
	SourceScript      SourceKind = "script-derived"
)

// IsBackground reports whether the kind is one of the background family.
func (k SourceKind) IsBackground() bool {
	switch k {
	case SourceBackground, SourceShadowBg, SourceIframeBg:
		return true
	}
	return false
}

// ImageCandidate is one discovered reference to an image on a page.
//
// After the pipeline's normalization step URL is always absolute with spaces
// percent-escaped; raw pre-normalization URLs never leave the pipeline.
type ImageCandidate struct {
	// URL is the image reference. Never a data: URI; those are filtered
	// at collection time.
	URL string `json:"url"`

	// AltText, TitleText and AriaLabel carry the annotation attributes of
	// the element the candidate was read from.
	AltText   string `json:"alt_text"`
	TitleText string `json:"title_text"`
	AriaLabel string `json:"aria_label"`

	// SourceKind records which extraction strategy found the candidate.
	SourceKind SourceKind `json:"source_kind"`

	// FromCrossOrigin is true when the resolved host differs from the
	// page's host. Set by the normalizer.
	FromCrossOrigin bool `json:"from_cross_origin"`

	// FromFrame marks candidates collected inside an embedded frame;
	// FrameURL is that frame's source URL.
	FromFrame bool   `json:"from_frame"`
	FrameURL  string `json:"frame_url,omitempty"`

	// FromShadowTree marks candidates collected from a shadow-encapsulated
	// subtree.
	FromShadowTree bool `json:"from_shadow_tree"`

	// SizeBytes is filled by the size probe when enabled; nil when the
	// probe is off or failed for this candidate.
	SizeBytes *int64 `json:"size_bytes,omitempty"`
}

// Headline is one h1/h2/h3 element extracted from the page.
type Headline struct {
	Text   string `json:"text"`
	Tag    string `json:"tag"`
	ID     string `json:"id,omitempty"`
	Anchor string `json:"anchor,omitempty"`
}

// PageContent holds the textual extraction of a page.
type PageContent struct {
	Title     string     `json:"title"`
	Headlines []Headline `json:"headlines"`
	Text      string     `json:"text,omitempty"`
	Markdown  string     `json:"markdown,omitempty"`
}
