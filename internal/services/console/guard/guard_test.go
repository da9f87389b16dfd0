package guard

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sikiya/sikiya-console/internal/platform/requestctx"
	"github.com/sikiya/sikiya-console/internal/services/console/integration/newsapi"
)

type fakeSessions struct {
	token string
}

func (f fakeSessions) Get(*http.Request) (string, bool) {
	return f.token, f.token != ""
}

func (fakeSessions) Set(http.ResponseWriter, *http.Request, string) error { return nil }

func (fakeSessions) Clear(http.ResponseWriter, *http.Request) error { return nil }

type fakeVerifier struct {
	calls    atomic.Int32
	identity newsapi.AdminIdentity
	err      error
	release  chan struct{}
}

func (f *fakeVerifier) VerifyAdmin(ctx context.Context, token string) (newsapi.AdminIdentity, error) {
	f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return newsapi.AdminIdentity{}, ctx.Err()
		}
	}
	return f.identity, f.err
}

func newTestGuard(t *testing.T, token string, verifier Verifier) *Guard {
	t.Helper()
	g, err := New(fakeSessions{token: token}, verifier, "/login")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func protectedContent() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Protected", "1")
		_, _ = io.WriteString(w, "<h1>admin content</h1>")
	})
}

func TestNewRequiresCollaborators(t *testing.T) {
	if _, err := New(nil, &fakeVerifier{}, "/login"); err == nil {
		t.Fatal("expected session store error")
	}
	if _, err := New(fakeSessions{}, nil, "/login"); err == nil {
		t.Fatal("expected verifier error")
	}
}

func TestRequireWithoutCredentialRedirectsWithoutNetwork(t *testing.T) {
	verifier := &fakeVerifier{identity: newsapi.AdminIdentity{IsAdmin: true}}
	g := newTestGuard(t, "", verifier)

	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(method, "/admin/articles/pending?tab=1", nil)
		g.Require(protectedContent()).ServeHTTP(rr, req)

		if rr.Code != http.StatusFound {
			t.Fatalf("%s status = %d, want 302", method, rr.Code)
		}
		if got := rr.Header().Get("Location"); got != "/login?redirect=/admin/articles/pending" {
			t.Fatalf("%s Location = %q", method, got)
		}
	}
	if verifier.calls.Load() != 0 {
		t.Fatalf("verify calls = %d, want 0", verifier.calls.Load())
	}
}

func TestRequireDeniesIdenticallyForEveryFailure(t *testing.T) {
	tests := []struct {
		name     string
		verifier *fakeVerifier
	}{
		{name: "not admin", verifier: &fakeVerifier{identity: newsapi.AdminIdentity{IsAdmin: false, Email: "u@x.y"}}},
		{name: "non success status", verifier: &fakeVerifier{err: &newsapi.APIError{StatusCode: 401, Message: "expired"}}},
		{name: "network failure", verifier: &fakeVerifier{err: errors.New("dial tcp: refused")}},
	}
	var first *httptest.ResponseRecorder
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGuard(t, "tok", tc.verifier)
			rr := httptest.NewRecorder()
			g.Require(protectedContent()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/articles/pending", nil))

			if rr.Code != http.StatusFound {
				t.Fatalf("status = %d", rr.Code)
			}
			if got := rr.Header().Get("Location"); got != "/login?redirect=/admin/articles/pending" {
				t.Fatalf("Location = %q", got)
			}
			if strings.Contains(rr.Body.String(), "admin content") {
				t.Fatal("protected content leaked")
			}
			if rr.Header().Get("X-Protected") != "" {
				t.Fatal("handler headers leaked")
			}
			if first == nil {
				first = rr
				return
			}
			if rr.Code != first.Code || rr.Header().Get("Location") != first.Header().Get("Location") || rr.Body.String() != first.Body.String() {
				t.Fatal("denials differ between failure causes")
			}
		})
	}
}

func TestRequireServesVerifiedAdmin(t *testing.T) {
	verifier := &fakeVerifier{identity: newsapi.AdminIdentity{IsAdmin: true, Email: "ed@sikiya.com", Role: "admin"}}
	g := newTestGuard(t, "tok", verifier)

	var awaited newsapi.AdminIdentity
	var token string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := Await(r.Context())
		if err != nil {
			t.Errorf("Await: %v", err)
		}
		awaited = identity
		token, _ = Token(r.Context())
		w.Header().Set("X-Page", "dashboard")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "dashboard")
	})
	rr := httptest.NewRecorder()
	g.Require(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))

	if rr.Code != http.StatusOK || rr.Body.String() != "dashboard" || rr.Header().Get("X-Page") != "dashboard" {
		t.Fatalf("response = %d %q %v", rr.Code, rr.Body.String(), rr.Header())
	}
	if awaited.Email != "ed@sikiya.com" || token != "tok" {
		t.Fatalf("identity = %+v token = %q", awaited, token)
	}
	if verifier.calls.Load() != 1 {
		t.Fatalf("verify calls = %d", verifier.calls.Load())
	}
}

func TestRequireRunsHandlerConcurrentlyWithVerification(t *testing.T) {
	verifier := &fakeVerifier{
		identity: newsapi.AdminIdentity{IsAdmin: true},
		release:  make(chan struct{}),
	}
	g := newTestGuard(t, "tok", verifier)

	handlerStarted := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(handlerStarted)
		_, _ = io.WriteString(w, "page")
	})
	done := make(chan struct{})
	rr := httptest.NewRecorder()
	go func() {
		defer close(done)
		g.Require(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin", nil))
	}()

	select {
	case <-handlerStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not start while verification was pending")
	}
	close(verifier.release)
	<-done
	if rr.Body.String() != "page" {
		t.Fatalf("body = %q", rr.Body.String())
	}
}

func TestRequireVerifiesMutationsBeforeHandler(t *testing.T) {
	verifier := &fakeVerifier{identity: newsapi.AdminIdentity{IsAdmin: false}}
	g := newTestGuard(t, "tok", verifier)

	called := false
	handler := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true })
	rr := httptest.NewRecorder()
	g.Require(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/articles/a1/approval", nil))

	if called {
		t.Fatal("mutation handler ran for a non-admin")
	}
	if got := rr.Header().Get("Location"); got != "/login?redirect=/admin/articles/a1/approval" {
		t.Fatalf("Location = %q", got)
	}
}

func TestRequireAttachesAdminForMutations(t *testing.T) {
	verifier := &fakeVerifier{identity: newsapi.AdminIdentity{IsAdmin: true, Email: "ed@sikiya.com", Role: "admin"}}
	g := newTestGuard(t, "tok", verifier)

	var admin requestctx.Admin
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		admin, _ = requestctx.AdminFromContext(r.Context())
		w.WriteHeader(http.StatusSeeOther)
	})
	rr := httptest.NewRecorder()
	g.Require(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/admin/users/u1/role", nil))
	if rr.Code != http.StatusSeeOther || admin.Email != "ed@sikiya.com" {
		t.Fatalf("status = %d admin = %+v", rr.Code, admin)
	}
}

func TestRequireUsesHTMXRedirect(t *testing.T) {
	g := newTestGuard(t, "", &fakeVerifier{})
	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("HX-Request", "true")
	rr := httptest.NewRecorder()
	g.Require(protectedContent()).ServeHTTP(rr, req)
	if got := rr.Header().Get("HX-Redirect"); got != "/login?redirect=/admin/users" {
		t.Fatalf("HX-Redirect = %q", got)
	}
}

func TestEnsureAdmin(t *testing.T) {
	t.Run("absent credential", func(t *testing.T) {
		verifier := &fakeVerifier{}
		g := newTestGuard(t, "", verifier)
		failed := 0
		if _, ok := g.EnsureAdmin(context.Background(), httptest.NewRequest(http.MethodGet, "/admin", nil), func() { failed++ }); ok {
			t.Fatal("expected denial")
		}
		if failed != 1 || verifier.calls.Load() != 0 {
			t.Fatalf("onFail = %d, calls = %d", failed, verifier.calls.Load())
		}
	})
	t.Run("verified", func(t *testing.T) {
		g := newTestGuard(t, "tok", &fakeVerifier{identity: newsapi.AdminIdentity{IsAdmin: true, Email: "a@b.c"}})
		identity, ok := g.EnsureAdmin(context.Background(), httptest.NewRequest(http.MethodGet, "/admin", nil), func() {
			t.Fatal("onFail called for admin")
		})
		if !ok || identity.Email != "a@b.c" {
			t.Fatalf("EnsureAdmin() = %+v, %v", identity, ok)
		}
	})
	t.Run("verify error", func(t *testing.T) {
		g := newTestGuard(t, "tok", &fakeVerifier{err: errors.New("malformed body")})
		failed := 0
		if _, ok := g.EnsureAdmin(context.Background(), httptest.NewRequest(http.MethodGet, "/admin", nil), func() { failed++ }); ok || failed != 1 {
			t.Fatalf("ok = %v, onFail = %d", ok, failed)
		}
	})
}

func TestAwaitWithoutGuard(t *testing.T) {
	if _, err := Await(context.Background()); !errors.Is(err, ErrNoVerdict) {
		t.Fatalf("Await() error = %v", err)
	}
	if _, ok := Token(context.Background()); ok {
		t.Fatal("Token() should be absent")
	}
}

func TestLoginURL(t *testing.T) {
	tests := []struct {
		origin string
		want   string
	}{
		{origin: "", want: "/login"},
		{origin: "/admin", want: "/login?redirect=/admin"},
		{origin: "/admin/articles/a b", want: "/login?redirect=/admin/articles/a+b"},
		{origin: "/admin/x&y", want: "/login?redirect=/admin/x%26y"},
	}
	for _, tc := range tests {
		if got := LoginURL("/login", tc.origin); got != tc.want {
			t.Fatalf("LoginURL(%q) = %q, want %q", tc.origin, got, tc.want)
		}
	}
}
