package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Readiness ReadinessConfig
	Collector CollectorConfig
	Probe     ProbeConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int // default: 4

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// ScreenshotWidth and ScreenshotHeight set the window size used for
	// screenshot capture; the original size is restored afterwards.
	ScreenshotWidth  int // default: 1920
	ScreenshotHeight int // default: 1080
}

// ReadinessConfig controls the page readiness controller.
type ReadinessConfig struct {
	// NavigationTimeout bounds the wait for the document body to appear
	// after navigation.
	NavigationTimeout time.Duration // default: 20s

	// ConsentDelay is the pause before the second consent pass. Some
	// pages reveal a second consent layer only after a wait.
	ConsentDelay time.Duration // default: 2s

	// ScrollStep is the incremental scroll distance in pixels.
	ScrollStep int // default: 300

	// MaxScrollDistance caps the total incremental scroll to bound
	// runtime on endless pages.
	MaxScrollDistance int // default: 8000

	// ScrollPause is the settle time after each scroll step.
	ScrollPause time.Duration // default: 500ms

	// AnchorSamples is how many structural elements the jump-scroll
	// phase visits.
	AnchorSamples int // default: 10

	// LoadMoreClicks bounds how many "load more" controls get clicked.
	LoadMoreClicks int // default: 2

	// IdleTimeout bounds the network idle wait.
	IdleTimeout time.Duration // default: 10s

	// IdlePollInterval is the in-flight counter polling interval.
	IdlePollInterval time.Duration // default: 300ms

	// IdleConfirm is how long the counter must stay at or below
	// MaxInflight before the page counts as quiet.
	IdleConfirm time.Duration // default: 1s

	// MaxInflight is the in-flight request count still considered idle.
	MaxInflight int // default: 0
}

// CollectorConfig controls candidate collection.
type CollectorConfig struct {
	// CheckIframes enables frame descent by default; overridable per
	// request.
	CheckIframes bool // default: true

	// CheckShadowDOM enables shadow tree scanning by default.
	CheckShadowDOM bool // default: true

	// ShadowHostLimit caps how many elements are probed for an attached
	// shadow root.
	ShadowHostLimit int // default: 100

	// CDNPrefixes are the subdomain labels stripped before host
	// comparison during grouping. Hardcoded product data; override only
	// deliberately, never expand silently.
	CDNPrefixes []string // default: cdn,img,images,static,media,assets
}

// ProbeConfig controls HTTP size probing.
type ProbeConfig struct {
	// Concurrency bounds parallel probe requests.
	Concurrency int // default: 8

	// Timeout is the per-candidate probe deadline.
	Timeout time.Duration // default: 3s
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: true

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per API key.
	Burst int // default: 5
}

// CacheConfig controls the extraction response cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached responses.
	MaxEntries int // default: 500
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("PAGEPIX_HOST", "0.0.0.0"),
			Port: envIntOr("PAGEPIX_PORT", 8080),
			Mode: envOr("PAGEPIX_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:         envBoolOr("PAGEPIX_HEADLESS", true),
			MaxPages:         envIntOr("PAGEPIX_MAX_PAGES", 4),
			NoSandbox:        envBoolOr("PAGEPIX_NO_SANDBOX", false),
			BrowserBin:       os.Getenv("PAGEPIX_BROWSER_BIN"),
			ScreenshotWidth:  envIntOr("PAGEPIX_SCREENSHOT_WIDTH", 1920),
			ScreenshotHeight: envIntOr("PAGEPIX_SCREENSHOT_HEIGHT", 1080),
		},
		Readiness: ReadinessConfig{
			NavigationTimeout: envDurationOr("PAGEPIX_NAV_TIMEOUT", 20*time.Second),
			ConsentDelay:      envDurationOr("PAGEPIX_CONSENT_DELAY", 2*time.Second),
			ScrollStep:        envIntOr("PAGEPIX_SCROLL_STEP", 300),
			MaxScrollDistance: envIntOr("PAGEPIX_MAX_SCROLL", 8000),
			ScrollPause:       envDurationOr("PAGEPIX_SCROLL_PAUSE", 500*time.Millisecond),
			AnchorSamples:     envIntOr("PAGEPIX_ANCHOR_SAMPLES", 10),
			LoadMoreClicks:    envIntOr("PAGEPIX_LOAD_MORE_CLICKS", 2),
			IdleTimeout:       envDurationOr("PAGEPIX_IDLE_TIMEOUT", 10*time.Second),
			IdlePollInterval:  envDurationOr("PAGEPIX_IDLE_POLL", 300*time.Millisecond),
			IdleConfirm:       envDurationOr("PAGEPIX_IDLE_CONFIRM", time.Second),
			MaxInflight:       envIntOr("PAGEPIX_MAX_INFLIGHT", 0),
		},
		Collector: CollectorConfig{
			CheckIframes:    envBoolOr("PAGEPIX_CHECK_IFRAMES", true),
			CheckShadowDOM:  envBoolOr("PAGEPIX_CHECK_SHADOW_DOM", true),
			ShadowHostLimit: envIntOr("PAGEPIX_SHADOW_HOST_LIMIT", 100),
			CDNPrefixes: envSliceOr("PAGEPIX_CDN_PREFIXES", []string{
				"cdn", "img", "images", "static", "media", "assets",
			}),
		},
		Probe: ProbeConfig{
			Concurrency: envIntOr("PAGEPIX_PROBE_CONCURRENCY", 8),
			Timeout:     envDurationOr("PAGEPIX_PROBE_TIMEOUT", 3*time.Second),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("PAGEPIX_AUTH_ENABLED", true),
			APIKeys: envSliceOr("PAGEPIX_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("PAGEPIX_RATE_RPS", 2.0),
			Burst:             envIntOr("PAGEPIX_RATE_BURST", 5),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("PAGEPIX_CACHE_MAX_ENTRIES", 500),
		},
		Log: LogConfig{
			Level:  envOr("PAGEPIX_LOG_LEVEL", "info"),
			Format: envOr("PAGEPIX_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
