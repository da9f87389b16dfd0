package requestmeta

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIsHTTPSWithPolicy(t *testing.T) {
	plain := httptest.NewRequest(http.MethodGet, "http://console.local/admin", nil)
	if IsHTTPSWithPolicy(plain, SchemePolicy{}) {
		t.Fatal("plain request should not be https")
	}

	forwarded := httptest.NewRequest(http.MethodGet, "http://console.local/admin", nil)
	forwarded.Header.Set("X-Forwarded-Proto", "https")
	if IsHTTPSWithPolicy(forwarded, SchemePolicy{}) {
		t.Fatal("forwarded proto must be ignored without trust")
	}
	if !IsHTTPSWithPolicy(forwarded, SchemePolicy{TrustForwardedProto: true}) {
		t.Fatal("forwarded proto should be honoured with trust")
	}

	tlsReq := httptest.NewRequest(http.MethodGet, "/admin", nil)
	tlsReq.TLS = &tls.ConnectionState{}
	if !IsHTTPSWithPolicy(tlsReq, SchemePolicy{}) {
		t.Fatal("tls request should be https")
	}

	if IsHTTPSWithPolicy(nil, SchemePolicy{TrustForwardedProto: true}) {
		t.Fatal("nil request should not be https")
	}
}

func TestLocalPath(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{raw: "/admin", want: "/admin", wantOK: true},
		{raw: " /admin/articles/pending ", want: "/admin/articles/pending", wantOK: true},
		{raw: "/admin/users?page=2", want: "/admin/users?page=2", wantOK: true},
		{raw: "/", want: "/", wantOK: true},
		{raw: "", wantOK: false},
		{raw: "admin", wantOK: false},
		{raw: "//evil.example/admin", wantOK: false},
		{raw: "/\\evil.example", wantOK: false},
		{raw: "https://evil.example/admin", wantOK: false},
		{raw: "javascript:alert(1)", wantOK: false},
	}
	for _, tc := range tests {
		t.Run(tc.raw, func(t *testing.T) {
			got, ok := LocalPath(tc.raw)
			if ok != tc.wantOK || got != tc.want {
				t.Fatalf("LocalPath(%q) = (%q, %v), want (%q, %v)", tc.raw, got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestOriginPathDropsQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/admin/articles/approved?page=3", nil)
	if got := OriginPath(r); got != "/admin/articles/approved" {
		t.Fatalf("OriginPath() = %q", got)
	}
	if got := OriginPath(nil); got != "/" {
		t.Fatalf("OriginPath(nil) = %q", got)
	}
}
