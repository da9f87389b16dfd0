// Package requestmeta provides normalized request metadata helpers.
package requestmeta

import (
	"net/http"
	"net/url"
	"strings"
)

// SchemePolicy controls how the request scheme is resolved.
//
// X-Forwarded-Proto is only honoured when TrustForwardedProto is set.
type SchemePolicy struct {
	TrustForwardedProto bool
}

// IsHTTPSWithPolicy reports whether a request should be treated as HTTPS.
func IsHTTPSWithPolicy(r *http.Request, policy SchemePolicy) bool {
	if r == nil {
		return false
	}
	if policy.TrustForwardedProto {
		switch strings.ToLower(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto"))) {
		case "https":
			return true
		case "http":
			return false
		}
	}
	if r.URL != nil && strings.EqualFold(r.URL.Scheme, "https") {
		return true
	}
	return r.TLS != nil
}

// LocalPath validates a post-login return target. Only same-site absolute
// paths are accepted: "/admin" passes, "//evil.example", "https://x" and
// "/\evil" do not. The returned value keeps path and query only.
func LocalPath(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw[0] != '/' {
		return "", false
	}
	if strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "", false
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme != "" || parsed.Host != "" {
		return "", false
	}
	out := parsed.EscapedPath()
	if out == "" {
		out = "/"
	}
	if parsed.RawQuery != "" {
		out += "?" + parsed.RawQuery
	}
	return out, true
}

// OriginPath returns the path of r without its query, suitable for a
// post-login return target.
func OriginPath(r *http.Request) string {
	if r == nil || r.URL == nil {
		return "/"
	}
	if path := r.URL.EscapedPath(); path != "" {
		return path
	}
	return "/"
}
