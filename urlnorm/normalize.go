// Package urlnorm resolves raw image references against a page URL and
// classifies their origin relative to the page.
package urlnorm

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidURL marks references that cannot be normalized. Per-candidate and
// recoverable: callers drop or keep the candidate best-effort, never abort.
var ErrInvalidURL = errors.New("urlnorm: invalid url")

// Normalize resolves raw against base and returns an absolute URL with
// literal spaces percent-escaped.
//
// Rules, in order: data: URIs are rejected; protocol-relative references get
// the base scheme; root-relative references get scheme://host; anything else
// not already absolute resolves via standard relative-reference resolution.
// A result that still lacks a host falls back to scheme://host/ + the
// stripped raw path rather than failing.
func Normalize(raw, base string) (string, error) {
	if raw == "" || strings.HasPrefix(raw, "data:") {
		return "", ErrInvalidURL
	}

	b, err := url.Parse(base)
	if err != nil || b.Scheme == "" || b.Host == "" {
		return "", ErrInvalidURL
	}

	var resolved string
	switch {
	case strings.HasPrefix(raw, "//"):
		resolved = b.Scheme + ":" + raw
	case strings.HasPrefix(raw, "/"):
		resolved = b.Scheme + "://" + b.Host + raw
	case strings.HasPrefix(raw, "http://"), strings.HasPrefix(raw, "https://"):
		resolved = raw
	default:
		ref, err := url.Parse(strings.ReplaceAll(raw, " ", "%20"))
		if err != nil {
			return "", ErrInvalidURL
		}
		resolved = b.ResolveReference(ref).String()
	}

	// Best-effort recovery when the result still has no host.
	if u, err := url.Parse(strings.ReplaceAll(resolved, " ", "%20")); err != nil || u.Host == "" {
		resolved = b.Scheme + "://" + b.Host + "/" + strings.TrimLeft(raw, "/")
	}

	return strings.ReplaceAll(resolved, " ", "%20"), nil
}

// Host returns the host component of rawURL, or "" if it cannot be parsed.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// CrossOrigin reports whether the normalized URL's host differs from the
// page's host. The raw hosts are compared; CDN-prefix stripping applies only
// to grouping, not to this flag.
func CrossOrigin(normalized, base string) bool {
	h := Host(normalized)
	return h != "" && !strings.EqualFold(h, Host(base))
}

// GroupHost returns the host used for grouping comparisons: when host has
// more than two labels and its leftmost label is a recognized CDN prefix,
// the registrable domain (last two labels) is used instead.
func GroupHost(host string, cdnPrefixes []string) string {
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	for _, p := range cdnPrefixes {
		if strings.EqualFold(labels[0], p) {
			return strings.Join(labels[len(labels)-2:], ".")
		}
	}
	return host
}
