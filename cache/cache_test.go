package cache

import (
	"testing"

	"github.com/pagepix/pagepix/models"
)

func req(url, selector string) *models.ExtractRequest {
	r := &models.ExtractRequest{URL: url, CSSSelector: selector}
	r.Defaults()
	return r
}

func TestKeyDistinguishesRequests(t *testing.T) {
	a := Key(req("https://x.com/", ""))
	b := Key(req("https://x.com/", "#main"))
	c := Key(req("https://y.com/", ""))

	if a == b || a == c || b == c {
		t.Errorf("keys collide: %s %s %s", a, b, c)
	}
	if a != Key(req("https://x.com/", "")) {
		t.Error("identical requests must share a key")
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	c := New(10)
	key := Key(req("https://x.com/", ""))
	resp := &models.ExtractResponse{Success: true, FinalURL: "https://x.com/"}

	if _, hit := c.Get(key, 60_000); hit {
		t.Fatal("unexpected hit on empty cache")
	}

	c.Set(key, resp)

	got, hit := c.Get(key, 60_000)
	if !hit || got.FinalURL != "https://x.com/" {
		t.Errorf("hit=%v got=%+v", hit, got)
	}

	if _, hit := c.Get(key, 0); hit {
		t.Error("maxAge 0 must bypass the cache")
	}
}

func TestCapacityEviction(t *testing.T) {
	c := New(2)
	for _, u := range []string{"https://a.com/", "https://b.com/", "https://c.com/"} {
		c.Set(Key(req(u, "")), &models.ExtractResponse{Success: true})
	}

	c.mu.RLock()
	n := len(c.store)
	c.mu.RUnlock()
	if n > 2 {
		t.Errorf("store holds %d entries, capacity 2", n)
	}
}
