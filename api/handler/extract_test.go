package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/pagepix/pagepix/cache"
	"github.com/pagepix/pagepix/models"
)

type fakeRunner struct {
	resp    *models.ExtractResponse
	lastReq *models.ExtractRequest
	calls   int
}

func (f *fakeRunner) Run(ctx context.Context, req *models.ExtractRequest) *models.ExtractResponse {
	f.calls++
	f.lastReq = req
	return f.resp
}

func okResponse() *models.ExtractResponse {
	return &models.ExtractResponse{
		Success:  true,
		FinalURL: "https://example.com/",
		Images: []models.ImageCandidate{
			{URL: "https://example.com/a.jpg", SourceKind: models.SourceImg},
		},
		Stats: models.ExtractStats{Collected: 3, Deduplicated: 1},
	}
}

func doPost(h gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/x", h)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestImagesSuccess(t *testing.T) {
	f := &fakeRunner{resp: okResponse()}
	w := doPost(Images(f, nil), `{"url":"https://example.com/"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp models.ExtractResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Success || len(resp.Images) != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestImagesStripsPageOnlyFlags(t *testing.T) {
	f := &fakeRunner{resp: okResponse()}
	doPost(Images(f, nil), `{"url":"https://example.com/","screenshot":true,"content":true}`)

	if f.lastReq.Screenshot || f.lastReq.Content {
		t.Errorf("page-only flags leaked into images route: %+v", f.lastReq)
	}
}

func TestPageKeepsFlags(t *testing.T) {
	f := &fakeRunner{resp: okResponse()}
	doPost(Page(f, nil), `{"url":"https://example.com/","screenshot":true,"content":true}`)

	if !f.lastReq.Screenshot || !f.lastReq.Content {
		t.Errorf("page flags lost: %+v", f.lastReq)
	}
}

func TestImagesRejectsBadBody(t *testing.T) {
	f := &fakeRunner{resp: okResponse()}
	w := doPost(Images(f, nil), `{"url":"not a url"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if f.calls != 0 {
		t.Error("pipeline must not run on invalid input")
	}
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		code string
		want int
	}{
		{models.ErrCodeLoadTimeout, http.StatusGatewayTimeout},
		{models.ErrCodeNavigation, http.StatusBadGateway},
		{models.ErrCodeInvalidInput, http.StatusBadRequest},
		{models.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		f := &fakeRunner{resp: &models.ExtractResponse{
			Success: false,
			Error:   &models.ErrorDetail{Code: tc.code, Message: "x"},
		}}
		w := doPost(Images(f, nil), `{"url":"https://example.com/"}`)
		if w.Code != tc.want {
			t.Errorf("code %s: status = %d, want %d", tc.code, w.Code, tc.want)
		}
	}
}

func TestCacheHitSkipsPipeline(t *testing.T) {
	f := &fakeRunner{resp: okResponse()}
	cc := cache.New(10)
	body := `{"url":"https://example.com/","max_age":60000}`

	w := doPost(Images(f, cc), body)
	if w.Code != http.StatusOK || f.calls != 1 {
		t.Fatalf("first call: status=%d calls=%d", w.Code, f.calls)
	}

	w = doPost(Images(f, cc), body)
	if w.Code != http.StatusOK {
		t.Fatalf("second call: status=%d", w.Code)
	}
	if f.calls != 1 {
		t.Errorf("pipeline ran %d times, want 1 (cache hit)", f.calls)
	}
	var resp models.ExtractResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.CacheStatus != "hit" {
		t.Errorf("cache_status = %q, want hit", resp.CacheStatus)
	}
}
