package console

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/sikiya/sikiya-console/internal/platform/assets/imagecdn"
	"github.com/sikiya/sikiya-console/internal/platform/timeouts"
	"github.com/sikiya/sikiya-console/internal/services/console/integration/newsapi"
	"github.com/sikiya/sikiya-console/internal/services/console/platform/requestmeta"
	"github.com/sikiya/sikiya-console/internal/services/console/session"
	"github.com/sikiya/sikiya-console/internal/services/console/storage/sqlite"
)

// sessionPruneInterval is how often expired persistent sessions are removed.
const sessionPruneInterval = time.Hour

// Config defines startup inputs for the console service.
type Config struct {
	HTTPAddr      string
	APIBaseURL    string
	CDNBaseURL    string
	SessionDBPath string
	// SessionSecret signs persistent session references; at least 32 bytes.
	SessionSecret []byte
	SessionTTL    time.Duration
	// CSRFKey is the 32-byte form protection key.
	CSRFKey             []byte
	SecureCookies       bool
	TrustForwardedProto bool
}

// Server hosts the console HTTP surface and lifecycle.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	sessions   *sqlite.Store
}

// NewServer validates config and constructs a console server.
func NewServer(_ context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	api, err := newsapi.New(cfg.APIBaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("news api client: %w", err)
	}
	store, err := sqlite.Open(cfg.SessionDBPath)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	policy := requestmeta.SchemePolicy{TrustForwardedProto: cfg.TrustForwardedProto}
	sessions, err := session.NewCookieStore(store, session.Config{
		Secret:       cfg.SessionSecret,
		TTL:          cfg.SessionTTL,
		SchemePolicy: policy,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("session cookies: %w", err)
	}
	handler, err := NewHandler(Dependencies{
		API:           api,
		Sessions:      sessions,
		CDN:           imagecdn.New(cfg.CDNBaseURL),
		SchemePolicy:  policy,
		CSRFKey:       cfg.CSRFKey,
		SecureCookies: cfg.SecureCookies,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("compose console handler: %w", err)
	}
	return &Server{
		httpAddr: httpAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		sessions: store,
	}, nil
}

// ListenAndServe serves HTTP traffic until context cancellation or server stop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("console server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	pruneCtx, stopPrune := context.WithCancel(ctx)
	defer stopPrune()
	go s.pruneSessions(pruneCtx)

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("console listening on %s", s.httpAddr)
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown console http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve console http: %w", err)
	}
}

func (s *Server) pruneSessions(ctx context.Context) {
	ticker := time.NewTicker(sessionPruneInterval)
	defer ticker.Stop()
	for {
		removed, err := s.sessions.PruneExpired(ctx, time.Now())
		switch {
		case err != nil && !errors.Is(err, context.Canceled):
			log.Printf("prune expired sessions: %v", err)
		case removed > 0:
			log.Printf("pruned %d expired sessions", removed)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Close closes open server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.sessions != nil {
		if err := s.sessions.Close(); err != nil {
			log.Printf("close session store: %v", err)
		}
	}
}
