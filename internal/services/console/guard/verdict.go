package guard

import (
	"context"
	"net/http"

	"github.com/sikiya/sikiya-console/internal/services/console/integration/newsapi"
)

// Verdict is the eventual outcome of one authorization check.
type Verdict struct {
	done     chan struct{}
	identity newsapi.AdminIdentity
	err      error
}

func newVerdict() *Verdict {
	return &Verdict{done: make(chan struct{})}
}

func resolvedVerdict(identity newsapi.AdminIdentity, err error) *Verdict {
	v := newVerdict()
	v.resolve(identity, err)
	return v
}

func (v *Verdict) resolve(identity newsapi.AdminIdentity, err error) {
	v.identity = identity
	v.err = err
	close(v.done)
}

// Wait blocks until the check finishes.
func (v *Verdict) Wait() (newsapi.AdminIdentity, error) {
	<-v.done
	return v.identity, v.err
}

type checkKey struct{}

type check struct {
	token   string
	verdict *Verdict
}

func withCheck(ctx context.Context, token string, v *Verdict) context.Context {
	return context.WithValue(ctx, checkKey{}, check{token: token, verdict: v})
}

// Token returns the credential Require read for this request.
func Token(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	c, ok := ctx.Value(checkKey{}).(check)
	if !ok || c.token == "" {
		return "", false
	}
	return c.token, true
}

// Await blocks until the request's authorization check finishes.
func Await(ctx context.Context) (newsapi.AdminIdentity, error) {
	if ctx == nil {
		return newsapi.AdminIdentity{}, ErrNoVerdict
	}
	c, ok := ctx.Value(checkKey{}).(check)
	if !ok || c.verdict == nil {
		return newsapi.AdminIdentity{}, ErrNoVerdict
	}
	return c.verdict.Wait()
}

// gatedWriter holds handler output until the verdict is known. A negative
// verdict discards everything the handler wrote.
type gatedWriter struct {
	w       http.ResponseWriter
	verdict *Verdict
	header  http.Header
	opened  bool
	closed  bool
}

func (g *gatedWriter) Header() http.Header {
	if g.opened {
		return g.w.Header()
	}
	return g.header
}

func (g *gatedWriter) pass() bool {
	if !g.opened && !g.closed {
		if _, err := g.verdict.Wait(); err != nil {
			g.closed = true
		} else {
			g.opened = true
			dst := g.w.Header()
			for key, values := range g.header {
				dst[key] = values
			}
		}
	}
	return g.opened
}

func (g *gatedWriter) WriteHeader(status int) {
	if g.pass() {
		g.w.WriteHeader(status)
	}
}

func (g *gatedWriter) Write(p []byte) (int, error) {
	if g.pass() {
		return g.w.Write(p)
	}
	return len(p), nil
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (g *gatedWriter) Unwrap() http.ResponseWriter {
	return g.w
}
