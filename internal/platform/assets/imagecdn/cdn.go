// Package imagecdn turns stored media keys into browser-loadable URLs.
package imagecdn

import "strings"

// DefaultBaseURL is the CloudFront distribution serving uploaded media.
const DefaultBaseURL = "https://d1flj35lnh82ng.cloudfront.net"

// CDN resolves object keys against one base URL.
type CDN struct {
	baseURL string
}

// New returns a CDN rooted at baseURL, or DefaultBaseURL when blank.
func New(baseURL string) CDN {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return CDN{baseURL: baseURL}
}

// BaseURL returns the normalized base URL.
func (c CDN) BaseURL() string {
	if c.baseURL == "" {
		return DefaultBaseURL
	}
	return c.baseURL
}

// Resolve maps a stored key to a URL.
//
// Absolute http(s) URLs and root-relative paths pass through unchanged.
// Blank keys and device-local file:// references cannot be served and
// resolve to false.
func (c CDN) Resolve(key string) (string, bool) {
	key = strings.TrimSpace(key)
	lower := strings.ToLower(key)
	switch {
	case key == "":
		return "", false
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return key, true
	case strings.HasPrefix(lower, "file://"):
		return "", false
	case strings.HasPrefix(key, "/"):
		return key, true
	default:
		return c.BaseURL() + "/" + key, true
	}
}

// ResolveAll resolves keys in order and drops those that cannot be served.
func (c CDN) ResolveAll(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if resolved, ok := c.Resolve(key); ok {
			out = append(out, resolved)
		}
	}
	return out
}
