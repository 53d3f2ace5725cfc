package urlnorm

import (
	"strings"
	"testing"
)

const base = "https://x.com/page"

func TestNormalize_RootRelative(t *testing.T) {
	got, err := Normalize("/a.jpg", base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://x.com/a.jpg" {
		t.Errorf("got %q, want %q", got, "https://x.com/a.jpg")
	}
}

func TestNormalize_ProtocolRelative(t *testing.T) {
	got, err := Normalize("//cdn.x.com/a.jpg", base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://cdn.x.com/a.jpg" {
		t.Errorf("got %q, want %q", got, "https://cdn.x.com/a.jpg")
	}
}

func TestNormalize_AlreadyAbsolute(t *testing.T) {
	got, err := Normalize("https://x.com/a.jpg", base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://x.com/a.jpg" {
		t.Errorf("got %q, want %q", got, "https://x.com/a.jpg")
	}
}

func TestNormalize_Relative(t *testing.T) {
	got, err := Normalize("img/photo.png", "https://x.com/dir/page.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "https://x.com/dir/img/photo.png" {
		t.Errorf("got %q, want %q", got, "https://x.com/dir/img/photo.png")
	}
}

func TestNormalize_RejectsDataURI(t *testing.T) {
	if _, err := Normalize("data:image/png;base64,AAAA", base); err == nil {
		t.Error("data: URI should be rejected")
	}
}

func TestNormalize_RejectsEmpty(t *testing.T) {
	if _, err := Normalize("", base); err == nil {
		t.Error("empty reference should be rejected")
	}
}

func TestNormalize_EscapesSpaces(t *testing.T) {
	got, err := Normalize("/my photo.jpg", base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, " ") {
		t.Errorf("output contains a literal space: %q", got)
	}
	if got != "https://x.com/my%20photo.jpg" {
		t.Errorf("got %q, want %q", got, "https://x.com/my%20photo.jpg")
	}
}

func TestNormalize_NeverReturnsSpaceOrData(t *testing.T) {
	inputs := []string{
		"/a b c.jpg", "//cdn.x.com/p q.png", "rel path/img.gif",
		"https://y.com/a b.webp",
	}
	for _, in := range inputs {
		got, err := Normalize(in, base)
		if err != nil {
			continue
		}
		if strings.Contains(got, " ") {
			t.Errorf("Normalize(%q) contains a space: %q", in, got)
		}
		if strings.HasPrefix(got, "data:") {
			t.Errorf("Normalize(%q) produced a data: URL: %q", in, got)
		}
	}
}

func TestNormalize_BadBase(t *testing.T) {
	if _, err := Normalize("/a.jpg", "not a url"); err == nil {
		t.Error("unparsable base should be rejected")
	}
}

func TestCrossOrigin(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://x.com/a.jpg", false},
		{"https://cdn.x.com/a.jpg", true},
		{"https://other.com/a.jpg", true},
	}
	for _, c := range cases {
		if got := CrossOrigin(c.url, base); got != c.want {
			t.Errorf("CrossOrigin(%q) = %v, want %v", c.url, got, c.want)
		}
	}
}

var cdnPrefixes = []string{"cdn", "img", "images", "static", "media", "assets"}

func TestGroupHost_StripsCDNPrefix(t *testing.T) {
	cases := []struct {
		host string
		want string
	}{
		{"cdn.example.com", "example.com"},
		{"img.example.com", "example.com"},
		{"static.shop.example.com", "example.com"},
		{"www.example.com", "www.example.com"}, // not a CDN prefix
		{"example.com", "example.com"},         // two labels, untouched
		{"cdn.com", "cdn.com"},                 // two labels, untouched
	}
	for _, c := range cases {
		if got := GroupHost(c.host, cdnPrefixes); got != c.want {
			t.Errorf("GroupHost(%q) = %q, want %q", c.host, got, c.want)
		}
	}
}
