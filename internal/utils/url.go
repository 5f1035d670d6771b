package utils

import (
	"errors"
	"net"
	"net/url"
	"path"
	"slices"
	"strings"

	"golang.org/x/net/idna"
)

var (
	ErrEmptyURL    = errors.New("canonicalize: empty url")
	ErrMissingHost = errors.New("canonicalize: missing host")
)

// CanonicalizeOptions controls optional canonicalization policies.
type CanonicalizeOptions struct {
	// DefaultScheme is assumed for schemeless input; empty requires a scheme.
	DefaultScheme string

	// DropTrackingParams removes utm_*, gclid, fbclid and friends.
	DropTrackingParams bool

	// StripTrailingSlash treats /a and /a/ the same (root "/" is kept).
	StripTrailingSlash bool

	// KeepParams, when non-empty, is the only set of query keys that survive.
	KeepParams []string
}

// SiteKeyOptions is the policy used to key audit history by page.
var SiteKeyOptions = CanonicalizeOptions{
	DefaultScheme:      "https",
	DropTrackingParams: true,
	StripTrailingSlash: true,
}

var trackingParams = map[string]struct{}{
	"utm_source": {}, "utm_medium": {}, "utm_campaign": {}, "utm_term": {}, "utm_content": {},
	"gclid": {}, "fbclid": {}, "mc_cid": {}, "mc_eid": {},
}

// Canonicalize returns a deterministic form of raw: lowercase scheme and
// host, punycode host, default port dropped, credentials and fragment
// removed, cleaned path and sorted query.
func Canonicalize(raw string, opts CanonicalizeOptions) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}
	if opts.DefaultScheme != "" && !strings.Contains(raw, "://") {
		raw = opts.DefaultScheme + "://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", ErrMissingHost
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.User = nil
	u.Fragment = ""
	u.RawFragment = ""

	host := strings.ToLower(u.Hostname())
	if puny, err := idna.Lookup.ToASCII(host); err == nil {
		host = puny
	}
	switch port := u.Port(); {
	case port == "",
		u.Scheme == "http" && port == "80",
		u.Scheme == "https" && port == "443":
		u.Host = host
	default:
		u.Host = net.JoinHostPort(host, port)
	}

	p := path.Clean(u.Path)
	if p == "." {
		p = "/"
	}
	if !opts.StripTrailingSlash && strings.HasSuffix(u.Path, "/") && p != "/" {
		p += "/"
	}
	u.Path = p
	u.RawPath = ""

	u.RawQuery = canonicalQuery(u.Query(), opts)
	return u.String(), nil
}

func canonicalQuery(q url.Values, opts CanonicalizeOptions) string {
	for k := range q {
		keep := len(opts.KeepParams) == 0 || slices.Contains(opts.KeepParams, k)
		if _, tracking := trackingParams[strings.ToLower(k)]; opts.DropTrackingParams && tracking {
			keep = false
		}
		if !keep {
			q.Del(k)
		}
	}
	for _, vs := range q {
		slices.Sort(vs)
	}
	// Encode sorts by key.
	return q.Encode()
}

// SiteKey is the canonical form of raw used to group audits of one page.
func SiteKey(raw string) (string, error) {
	return Canonicalize(raw, SiteKeyOptions)
}

// SameHost reports whether a and b point at the same host once
// canonicalized.
func SameHost(a, b string) bool {
	ca, err := SiteKey(a)
	if err != nil {
		return false
	}
	cb, err := SiteKey(b)
	if err != nil {
		return false
	}
	ua, _ := url.Parse(ca)
	ub, _ := url.Parse(cb)
	return ua.Host == ub.Host
}

// ShortID returns the first 8 characters of an id, as used in file names.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
