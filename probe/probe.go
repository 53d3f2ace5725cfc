// Package probe estimates the transfer size of image candidates with HEAD
// requests. Probing happens after deduplication so only winners cost a
// request. Requests carry a Chrome TLS fingerprint; image CDNs apply the
// same bot filtering as page origins.
package probe

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	tls2 "github.com/refraction-networking/utls"
	"golang.org/x/sync/errgroup"

	"github.com/pagepix/pagepix/config"
	"github.com/pagepix/pagepix/models"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Prober fills ImageCandidate.SizeBytes.
type Prober struct {
	cfg    config.ProbeConfig
	client *http.Client
}

func New(cfg config.ProbeConfig) *Prober {
	transport := &http.Transport{
		DialTLSContext: dialTLSChrome,
	}
	return &Prober{
		cfg:    cfg,
		client: &http.Client{Transport: transport},
	}
}

// Fill probes every candidate concurrently, bounded by the configured
// concurrency, and sets SizeBytes in place. Per-candidate failures leave
// SizeBytes nil; the probe never fails the pipeline.
func (p *Prober) Fill(ctx context.Context, candidates []models.ImageCandidate) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	for i := range candidates {
		g.Go(func() error {
			size, err := p.probeOne(ctx, candidates[i].URL)
			if err != nil {
				slog.Debug("size probe failed", "url", candidates[i].URL, "error", err)
				return nil
			}
			candidates[i].SizeBytes = &size
			return nil
		})
	}
	_ = g.Wait()
}

// FilterMinSize drops candidates whose probed size is known and below min.
// Unknown sizes are kept; a failed probe must not hide an image.
func FilterMinSize(candidates []models.ImageCandidate, min int64) []models.ImageCandidate {
	if min <= 0 {
		return candidates
	}
	kept := candidates[:0]
	for _, c := range candidates {
		if c.SizeBytes != nil && *c.SizeBytes < min {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// probeOne tries HEAD first and falls back to a ranged GET for servers
// that reject HEAD or omit Content-Length on it.
func (p *Prober) probeOne(ctx context.Context, url string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	size, err := p.request(ctx, http.MethodHead, url, "")
	if err == nil && size >= 0 {
		return size, nil
	}
	return p.request(ctx, http.MethodGet, url, "bytes=0-0")
}

func (p *Prober) request(ctx context.Context, method, url, rangeHeader string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return -1, err
	}
	req.Header.Set("User-Agent", chromeUA)
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return -1, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return -1, &statusError{code: resp.StatusCode}
	}

	// A ranged response reports the full length after the slash.
	if cr := resp.Header.Get("Content-Range"); cr != "" {
		if idx := lastSlash(cr); idx >= 0 {
			if total, perr := strconv.ParseInt(cr[idx+1:], 10, 64); perr == nil {
				return total, nil
			}
		}
	}
	if cl := resp.Header.Get("Content-Length"); cl != "" && resp.StatusCode != http.StatusPartialContent {
		if size, perr := strconv.ParseInt(cl, 10, 64); perr == nil {
			return size, nil
		}
	}
	return -1, errNoLength
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return "probe: HTTP " + strconv.Itoa(e.code)
}

var errNoLength = errors.New("probe: no content length in response")

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls2.UClient(rawConn, &tls2.Config{
		ServerName: host,
	}, tls2.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}
