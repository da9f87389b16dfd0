// Package guard gates admin routes behind a live authorization check.
//
// Every protected request re-verifies the stored credential against the news
// API; nothing is cached between requests. Any failure (no credential, a
// non-2xx answer, isAdmin=false, a network or decode error) sends the browser
// to the login page with the origin path as its return target.
package guard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/sikiya/sikiya-console/internal/platform/requestctx"
	"github.com/sikiya/sikiya-console/internal/services/console/integration/newsapi"
	"github.com/sikiya/sikiya-console/internal/services/console/platform/httpx"
	"github.com/sikiya/sikiya-console/internal/services/console/platform/requestmeta"
	"github.com/sikiya/sikiya-console/internal/services/console/session"
)

var (
	// ErrNoCredential reports that neither session slot holds a token.
	ErrNoCredential = errors.New("no stored credential")
	// ErrNotAdmin reports a verified credential without admin rights.
	ErrNotAdmin = errors.New("credential does not belong to an admin")
	// ErrNoVerdict reports a request that never passed through Require.
	ErrNoVerdict = errors.New("request was not checked by the access guard")
)

// Verifier performs the authorization check for one credential.
type Verifier interface {
	VerifyAdmin(ctx context.Context, token string) (newsapi.AdminIdentity, error)
}

// APIVerifier checks credentials with GET /verify-admin.
type APIVerifier struct {
	Client *newsapi.Client
}

// VerifyAdmin implements Verifier.
func (v APIVerifier) VerifyAdmin(ctx context.Context, token string) (newsapi.AdminIdentity, error) {
	if v.Client == nil {
		return newsapi.AdminIdentity{}, errors.New("news api client is not configured")
	}
	return v.Client.WithToken(token).VerifyAdmin(ctx)
}

// Guard resolves and verifies the operator for protected requests.
type Guard struct {
	sessions  session.Store
	verifier  Verifier
	loginPath string
}

// New builds a Guard that redirects failures to loginPath.
func New(sessions session.Store, verifier Verifier, loginPath string) (*Guard, error) {
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if verifier == nil {
		return nil, errors.New("admin verifier is required")
	}
	loginPath = strings.TrimSpace(loginPath)
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Guard{sessions: sessions, verifier: verifier, loginPath: loginPath}, nil
}

// Verify runs the authorization check for token.
func (g *Guard) Verify(ctx context.Context, token string) (newsapi.AdminIdentity, error) {
	if strings.TrimSpace(token) == "" {
		return newsapi.AdminIdentity{}, ErrNoCredential
	}
	identity, err := g.verifier.VerifyAdmin(ctx, token)
	if err != nil {
		return newsapi.AdminIdentity{}, fmt.Errorf("verify admin: %w", err)
	}
	if !identity.IsAdmin {
		return newsapi.AdminIdentity{}, ErrNotAdmin
	}
	return identity, nil
}

// EnsureAdmin reads the credential and verifies it. On any failure onFail is
// invoked and false returned; with no credential no request is made.
func (g *Guard) EnsureAdmin(ctx context.Context, r *http.Request, onFail func()) (newsapi.AdminIdentity, bool) {
	token, ok := g.sessions.Get(r)
	if !ok {
		callFail(onFail)
		return newsapi.AdminIdentity{}, false
	}
	identity, err := g.Verify(ctx, token)
	if err != nil {
		logDenied(r, err)
		callFail(onFail)
		return newsapi.AdminIdentity{}, false
	}
	return identity, true
}

// LoginRedirect returns the login URL carrying r's path as return target.
// The query string of r is dropped.
func (g *Guard) LoginRedirect(r *http.Request) string {
	return LoginURL(g.loginPath, requestmeta.OriginPath(r))
}

// LoginURL builds loginPath?redirect=origin, keeping slashes readable.
func LoginURL(loginPath, origin string) string {
	if origin == "" {
		return loginPath
	}
	return loginPath + "?redirect=" + strings.ReplaceAll(url.QueryEscape(origin), "%2F", "/")
}

// Require protects next.
//
// Safe methods start verification concurrently with the handler so page data
// can load while the check is in flight; the handler's response is held until
// the verdict arrives and replaced by the login redirect when it is negative.
// Other methods are verified before next runs, so no mutation is ever issued
// for an unverified operator.
func (g *Guard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := g.sessions.Get(r)
		if !ok {
			g.deny(w, r)
			return
		}

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			identity, err := g.Verify(r.Context(), token)
			if err != nil {
				logDenied(r, err)
				g.deny(w, r)
				return
			}
			ctx := requestctx.WithAdmin(r.Context(), requestctx.Admin{Email: identity.Email, Role: identity.Role})
			ctx = withCheck(ctx, token, resolvedVerdict(identity, nil))
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		v := newVerdict()
		go func() {
			identity, err := g.Verify(r.Context(), token)
			v.resolve(identity, err)
		}()

		gate := &gatedWriter{w: w, verdict: v, header: http.Header{}}
		next.ServeHTTP(gate, r.WithContext(withCheck(r.Context(), token, v)))

		if _, err := v.Wait(); err != nil {
			logDenied(r, err)
			g.deny(w, r)
		}
	})
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request) {
	httpx.WriteRedirect(w, r, g.LoginRedirect(r), http.StatusFound)
}

func callFail(onFail func()) {
	if onFail != nil {
		onFail()
	}
}

func logDenied(r *http.Request, err error) {
	if errors.Is(err, ErrNotAdmin) || errors.Is(err, context.Canceled) {
		return
	}
	path := "-"
	if r != nil && r.URL != nil {
		path = r.URL.Path
	}
	log.Printf("access guard denied %s: %v", path, err)
}
