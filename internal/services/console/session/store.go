// Package session keeps the operator's bearer credential across requests.
//
// The credential lives in two slots under one logical key: a persistent slot
// that survives browser restarts and a session-scoped slot that ends with the
// browser session. Reads prefer the persistent slot.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sikiya/sikiya-console/internal/services/console/platform/requestmeta"
	"github.com/sikiya/sikiya-console/internal/services/console/storage"
)

const (
	// PersistentCookieName holds a signed reference to a stored session row.
	PersistentCookieName = "sikiya_session"
	// SessionCookieName holds the credential for the current browser session.
	SessionCookieName = "sikiya_token"

	// DefaultTTL bounds how long the persistent slot stays valid.
	DefaultTTL = 30 * 24 * time.Hour

	issuer = "sikiya-console"
)

// Store reads and writes the credential for one browser.
type Store interface {
	Get(r *http.Request) (string, bool)
	Set(w http.ResponseWriter, r *http.Request, token string) error
	Clear(w http.ResponseWriter, r *http.Request) error
}

// Config controls cookie signing and lifetime.
type Config struct {
	// Secret signs persistent-slot references (HS256). Required.
	Secret []byte
	// TTL is the persistent slot lifetime; DefaultTTL when zero.
	TTL          time.Duration
	SchemePolicy requestmeta.SchemePolicy
	Now          func() time.Time
	NewID        func() string
}

// CookieStore implements Store with two cookies and a SessionStore backing
// the persistent slot.
type CookieStore struct {
	records storage.SessionStore
	secret  []byte
	ttl     time.Duration
	policy  requestmeta.SchemePolicy
	now     func() time.Time
	newID   func() string
}

// NewCookieStore builds a CookieStore.
func NewCookieStore(records storage.SessionStore, cfg Config) (*CookieStore, error) {
	if records == nil {
		return nil, errors.New("session records store is required")
	}
	if len(cfg.Secret) < 32 {
		return nil, errors.New("session secret must be at least 32 bytes")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	return &CookieStore{
		records: records,
		secret:  append([]byte(nil), cfg.Secret...),
		ttl:     cfg.TTL,
		policy:  cfg.SchemePolicy,
		now:     cfg.Now,
		newID:   cfg.NewID,
	}, nil
}

// Get returns the credential from the persistent slot, falling back to the
// session-scoped slot. Tampered, expired or orphaned references read as
// absent.
func (s *CookieStore) Get(r *http.Request) (string, bool) {
	if s == nil || r == nil {
		return "", false
	}
	if token, ok := s.persistentToken(r); ok {
		return token, true
	}
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(cookie.Value)
	return token, token != ""
}

// Set writes token into both slots.
func (s *CookieStore) Set(w http.ResponseWriter, r *http.Request, token string) error {
	if s == nil {
		return errors.New("session store is not configured")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("session token is required")
	}
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)
	id := s.newID()

	if err := s.records.SaveSession(requestContext(r), storage.SessionRecord{
		ID:        id,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        id,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("sign session reference: %w", err)
	}

	secure := requestmeta.IsHTTPSWithPolicy(r, s.policy)
	http.SetCookie(w, &http.Cookie{
		Name:     PersistentCookieName,
		Value:    signed,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear erases both slots. Cookies are always expired; the returned error
// only reports a failure to delete the stored row.
func (s *CookieStore) Clear(w http.ResponseWriter, r *http.Request) error {
	if s == nil {
		return errors.New("session store is not configured")
	}
	var deleteErr error
	if id, ok := s.referenceID(r, false); ok {
		if err := s.records.DeleteSession(requestContext(r), id); err != nil {
			deleteErr = fmt.Errorf("delete session: %w", err)
		}
	}
	secure := requestmeta.IsHTTPSWithPolicy(r, s.policy)
	for _, name := range []string{PersistentCookieName, SessionCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return deleteErr
}

func (s *CookieStore) persistentToken(r *http.Request) (string, bool) {
	id, ok := s.referenceID(r, true)
	if !ok {
		return "", false
	}
	record, err := s.records.LoadSession(requestContext(r), id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("load persistent session: %v", err)
		}
		return "", false
	}
	token := strings.TrimSpace(record.Token)
	return token, token != ""
}

// referenceID extracts the session id from the persistent cookie. With
// validate=false expiry is ignored so Clear can still remove stale rows; the
// signature is always checked.
func (s *CookieStore) referenceID(r *http.Request, validate bool) (string, bool) {
	if r == nil {
		return "", false
	}
	cookie, err := r.Cookie(PersistentCookieName)
	if err != nil || strings.TrimSpace(cookie.Value) == "" {
		return "", false
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	}
	if validate {
		opts = append(opts, jwt.WithExpirationRequired())
	} else {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}
	var claims jwt.RegisteredClaims
	if _, err := jwt.ParseWithClaims(cookie.Value, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...); err != nil {
		return "", false
	}
	id := strings.TrimSpace(claims.ID)
	return id, id != ""
}

func requestContext(r *http.Request) context.Context {
	if r == nil {
		return context.Background()
	}
	return r.Context()
}

var _ Store = (*CookieStore)(nil)
