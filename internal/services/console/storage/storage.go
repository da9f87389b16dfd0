// Package storage declares the console's local persistence contracts.
//
// The console owns no domain data; it only remembers which bearer credential
// belongs to which browser between visits.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist or has expired.
var ErrNotFound = errors.New("record not found")

// SessionRecord is one persisted browser session.
type SessionRecord struct {
	ID        string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionStore persists credentials for the long-lived session slot.
type SessionStore interface {
	SaveSession(ctx context.Context, record SessionRecord) error
	LoadSession(ctx context.Context, id string) (SessionRecord, error)
	DeleteSession(ctx context.Context, id string) error
	PruneExpired(ctx context.Context, now time.Time) (int64, error)
}
