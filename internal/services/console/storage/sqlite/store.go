package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sikiya/sikiya-console/internal/platform/storage/sqlitemigrate"
	"github.com/sikiya/sikiya-console/internal/services/console/storage"
	"github.com/sikiya/sikiya-console/internal/services/console/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store provides SQLite-backed session persistence.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens and migrates the console SQLite store at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close releases the underlying SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// SaveSession upserts a session row and prunes rows that already expired.
func (s *Store) SaveSession(ctx context.Context, record storage.SessionRecord) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	record.ID = strings.TrimSpace(record.ID)
	if record.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if strings.TrimSpace(record.Token) == "" {
		return fmt.Errorf("session token is required")
	}
	if record.ExpiresAt.IsZero() {
		return fmt.Errorf("session expiry is required")
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now().UTC()
	}

	if _, err := s.PruneExpired(ctx, s.now()); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO console_sessions (id, token, created_at, expires_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		    token = excluded.token,
		    expires_at = excluded.expires_at`,
		record.ID,
		record.Token,
		record.CreatedAt.UTC().UnixMilli(),
		record.ExpiresAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// LoadSession returns an unexpired session or storage.ErrNotFound.
func (s *Store) LoadSession(ctx context.Context, id string) (storage.SessionRecord, error) {
	if s == nil || s.sqlDB == nil {
		return storage.SessionRecord{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.SessionRecord{}, storage.ErrNotFound
	}

	var record storage.SessionRecord
	var createdAt, expiresAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, token, created_at, expires_at FROM console_sessions WHERE id = ? AND expires_at > ?`,
		id, s.now().UTC().UnixMilli(),
	).Scan(&record.ID, &record.Token, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.SessionRecord{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.SessionRecord{}, fmt.Errorf("load session: %w", err)
	}
	record.CreatedAt = unixMillisToTime(createdAt)
	record.ExpiresAt = unixMillisToTime(expiresAt)
	return record, nil
}

// DeleteSession removes a session row. Missing rows are not an error.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM console_sessions WHERE id = ?`, strings.TrimSpace(id)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PruneExpired deletes sessions that expired at or before now.
func (s *Store) PruneExpired(ctx context.Context, now time.Time) (int64, error) {
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	result, err := s.sqlDB.ExecContext(ctx, `DELETE FROM console_sessions WHERE expires_at <= ?`, now.UTC().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	return n, nil
}

func unixMillisToTime(value int64) time.Time {
	if value <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

var _ storage.SessionStore = (*Store)(nil)
