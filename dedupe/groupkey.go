// Package dedupe collapses size/format variants of the same logical image
// into one best candidate per group.
package dedupe

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pagepix/pagepix/urlnorm"
)

// sizeTokenRe matches size/scale tokens embedded in filenames:
// numeric WxH dimensions, named buckets, pixel/width suffixes and density
// suffixes like @2x.
var sizeTokenRe = regexp.MustCompile(`[-_](\d+x\d+|small|medium|large|thumbnail|thumb|\d+w|\d+h|\d+px|@\d+x)\b`)

// densityRe catches density suffixes not introduced by - or _.
var densityRe = regexp.MustCompile(`@\d+x`)

// groupKey identifies an equivalence class of candidates believed to be the
// same logical image at different sizes or encodings.
type groupKey struct {
	host    string // CDN-prefix-stripped host
	pathSig string // path with size tokens removed from the filename
	alt     string
}

// keyFor derives the group key from a normalized candidate URL and its alt
// text. ok is false when the URL does not parse; such candidates form
// singleton groups and are never merged or dropped.
func keyFor(rawURL, alt string, cdnPrefixes []string) (groupKey, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return groupKey{}, false
	}

	path := u.Path
	filename := path
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		filename = path[idx+1:]
	}

	baseName := sizeTokenRe.ReplaceAllString(filename, "")
	baseName = densityRe.ReplaceAllString(baseName, "")

	pathSig := path
	if filename != "" {
		pathSig = path[:len(path)-len(filename)] + baseName
	}

	return groupKey{
		host:    urlnorm.GroupHost(u.Host, cdnPrefixes),
		pathSig: pathSig,
		alt:     alt,
	}, true
}
