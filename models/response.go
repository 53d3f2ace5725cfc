package models

// ExtractResponse is the response for POST /api/v1/images and /api/v1/page.
type ExtractResponse struct {
	// Success indicates whether the page loaded and the pipeline ran.
	Success bool `json:"success"`

	// FinalURL is the URL after following all redirects.
	FinalURL string `json:"final_url"`

	// Images is the deduplicated candidate list, one winner per logical
	// image. Order is not guaranteed stable across runs.
	Images []ImageCandidate `json:"images"`

	// Content is populated by /api/v1/page when content extraction was
	// requested.
	Content *PageContent `json:"content,omitempty"`

	// ScreenshotPath is the server-side path of the captured screenshot,
	// when one was requested.
	ScreenshotPath string `json:"screenshot_path,omitempty"`

	// Stats summarises how many raw candidates each stage saw.
	Stats ExtractStats `json:"stats"`

	// Timing provides duration breakdowns for the operation.
	Timing TimingInfo `json:"timing"`

	// CacheStatus indicates whether the response was served from cache.
	// Values: "hit", "miss", or empty (caching not requested).
	CacheStatus string `json:"cache_status,omitempty"`

	// Error is populated only when Success is false.
	Error *ErrorDetail `json:"error,omitempty"`
}

// ExtractStats counts candidates through the pipeline stages.
type ExtractStats struct {
	// Collected is the raw candidate count before normalization.
	Collected int `json:"collected"`

	// Deduplicated is the final count after grouping and ranking.
	Deduplicated int `json:"deduplicated"`

	// NetworkIdle reports whether network quiescence was observed before
	// collection; false means the idle wait timed out and collection
	// proceeded anyway.
	NetworkIdle bool `json:"network_idle"`

	// ConsentClicked reports whether any consent control was dismissed.
	ConsentClicked bool `json:"consent_clicked"`
}

// TimingInfo breaks down the time spent in each phase.
type TimingInfo struct {
	// TotalMs is the end-to-end duration in milliseconds.
	TotalMs int64 `json:"total_ms"`

	// ReadinessMs covers navigation, consent handling, lazy-load
	// scrolling and the network idle wait.
	ReadinessMs int64 `json:"readiness_ms"`

	// CollectionMs covers strategy execution, normalization and dedupe.
	CollectionMs int64 `json:"collection_ms"`

	// ProbeMs covers HTTP size probing, when enabled.
	ProbeMs int64 `json:"probe_ms,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status    string    `json:"status"` // "healthy" or "degraded"
	Uptime    string    `json:"uptime"`
	PoolStats PoolStats `json:"pool_stats"`
	Version   string    `json:"version"`
}

// PoolStats reports the state of the browser page pool.
type PoolStats struct {
	MaxPages    int `json:"max_pages"`
	ActivePages int `json:"active_pages"`
}
