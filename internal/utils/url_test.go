package utils

import (
	"errors"
	"testing"
)

func TestCanonicalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		opts CanonicalizeOptions
		want string
	}{
		{
			in:   "HTTP://Example.COM:80/foo/../bar/?b=2&a=1#frag",
			want: "http://example.com/bar/?a=1&b=2",
		},
		{
			in:   "https://user:pw@example.com:443/index.html#section",
			want: "https://example.com/index.html",
		},
		{
			in:   "https://example.com:8443/a",
			want: "https://example.com:8443/a",
		},
		{
			in:   "example.com/page?utm_source=x&utm_medium=y&z=1",
			opts: CanonicalizeOptions{DefaultScheme: "https", DropTrackingParams: true},
			want: "https://example.com/page?z=1",
		},
		{
			in:   "https://example.com/p?z=1&keep=2&b=3",
			opts: CanonicalizeOptions{KeepParams: []string{"keep", "z"}},
			want: "https://example.com/p?keep=2&z=1",
		},
		{
			in:   "https://例え.テスト/a",
			want: "https://xn--r8jz45g.xn--zckzah/a",
		},
		{
			in:   "https://example.com/foo/",
			opts: CanonicalizeOptions{StripTrailingSlash: true},
			want: "https://example.com/foo",
		},
		{
			in:   "https://example.com",
			opts: CanonicalizeOptions{StripTrailingSlash: true},
			want: "https://example.com/",
		},
	}

	for _, tt := range tests {
		got, err := Canonicalize(tt.in, tt.opts)
		if err != nil {
			t.Fatalf("Canonicalize(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCanonicalize_Errors(t *testing.T) {
	t.Parallel()
	if _, err := Canonicalize("  ", CanonicalizeOptions{}); !errors.Is(err, ErrEmptyURL) {
		t.Errorf("expected ErrEmptyURL, got %v", err)
	}
	if _, err := Canonicalize("example.com/x", CanonicalizeOptions{}); !errors.Is(err, ErrMissingHost) {
		t.Errorf("expected ErrMissingHost without default scheme, got %v", err)
	}
}

func TestSiteKey_GroupsEquivalentURLs(t *testing.T) {
	t.Parallel()
	want, err := SiteKey("https://example.com/pricing")
	if err != nil {
		t.Fatalf("SiteKey: %v", err)
	}
	for _, in := range []string{
		"example.com/pricing",
		"HTTPS://EXAMPLE.com:443/pricing/",
		"https://example.com/pricing?utm_source=newsletter#plans",
	} {
		got, err := SiteKey(in)
		if err != nil {
			t.Fatalf("SiteKey(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("SiteKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSameHost(t *testing.T) {
	t.Parallel()
	if !SameHost("example.com/a", "https://EXAMPLE.com/b?x=1") {
		t.Error("expected same host")
	}
	if SameHost("example.com", "example.org") {
		t.Error("expected different hosts")
	}
	if SameHost("", "example.org") {
		t.Error("empty url never matches")
	}
}

func TestShortID(t *testing.T) {
	t.Parallel()
	if got := ShortID("0123456789abcdef"); got != "01234567" {
		t.Errorf("ShortID = %q", got)
	}
	if got := ShortID("abc"); got != "abc" {
		t.Errorf("ShortID = %q", got)
	}
}
