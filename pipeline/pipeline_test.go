package pipeline

import (
	"errors"
	"testing"

	"github.com/pagepix/pagepix/config"
	"github.com/pagepix/pagepix/models"
)

func testPipeline() *Pipeline {
	cfg := config.Load()
	return &Pipeline{
		cfg: cfg,
	}
}

func TestNormalizeResolvesAndTags(t *testing.T) {
	p := testPipeline()
	raw := []models.ImageCandidate{
		{URL: "/a.jpg"},
		{URL: "//cdn.x.com/a.jpg"},
		{URL: "https://x.com/a.jpg"},
		{URL: "data:image/png;base64,AAAA"},
	}

	got := p.normalize(raw, "https://x.com/page")

	if len(got) != 3 {
		t.Fatalf("normalized %d candidates, want 3 (data: dropped)", len(got))
	}
	wantURLs := []string{
		"https://x.com/a.jpg",
		"https://cdn.x.com/a.jpg",
		"https://x.com/a.jpg",
	}
	for i, w := range wantURLs {
		if got[i].URL != w {
			t.Errorf("candidate %d = %q, want %q", i, got[i].URL, w)
		}
	}
	if got[0].FromCrossOrigin {
		t.Error("same-origin candidate flagged cross-origin")
	}
	if !got[1].FromCrossOrigin {
		t.Error("cdn host must be flagged cross-origin (raw host comparison)")
	}
}

func TestNormalizeEscapesSpaces(t *testing.T) {
	p := testPipeline()
	got := p.normalize(
		[]models.ImageCandidate{{URL: "/my photo.jpg"}},
		"https://x.com/",
	)
	if len(got) != 1 || got[0].URL != "https://x.com/my%20photo.jpg" {
		t.Errorf("got %+v", got)
	}
}

func TestFailureWrapsUnknownErrors(t *testing.T) {
	resp := failure("https://x.com/", errors.New("boom"))

	if resp.Success {
		t.Error("failure response marked successful")
	}
	if resp.Error == nil || resp.Error.Code != models.ErrCodeInternal {
		t.Errorf("error detail = %+v", resp.Error)
	}
	if resp.Images == nil || len(resp.Images) != 0 {
		t.Errorf("images = %v, want empty non-nil", resp.Images)
	}
}

func TestFailureKeepsExtractErrorCode(t *testing.T) {
	err := models.NewExtractError(models.ErrCodeLoadTimeout, "took too long", nil)
	resp := failure("https://slow.example/", err)

	if resp.Error == nil || resp.Error.Code != models.ErrCodeLoadTimeout {
		t.Errorf("error detail = %+v", resp.Error)
	}
}
