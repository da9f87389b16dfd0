package sqlitemigrate

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func TestApplyRecordsMigration(t *testing.T) {
	db := openTestDB(t)
	migrations := fstest.MapFS{
		"001_sessions.sql": &fstest.MapFile{Data: []byte("-- +migrate Up\nCREATE TABLE sessions(id TEXT PRIMARY KEY);\n-- +migrate Down\nDROP TABLE sessions;")},
	}

	if err := Apply(context.Background(), db, migrations, ""); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := countRows(t, db, "SELECT COUNT(*) FROM schema_migrations"); got != 1 {
		t.Fatalf("migration rows = %d, want 1", got)
	}
	if got := countRows(t, db, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'sessions'"); got != 1 {
		t.Fatal("expected sessions table")
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	migrations := fstest.MapFS{
		"001_sessions.sql": &fstest.MapFile{Data: []byte("CREATE TABLE sessions(id TEXT PRIMARY KEY);")},
	}
	for i := 0; i < 2; i++ {
		if err := Apply(context.Background(), db, migrations, "."); err != nil {
			t.Fatalf("apply run %d: %v", i, err)
		}
	}
	if got := countRows(t, db, "SELECT COUNT(*) FROM schema_migrations"); got != 1 {
		t.Fatalf("migration rows = %d, want 1", got)
	}
}

func TestApplyUsesRootInKey(t *testing.T) {
	db := openTestDB(t)
	migrations := fstest.MapFS{
		"sql/001_a.sql": &fstest.MapFile{Data: []byte("CREATE TABLE a(id TEXT);")},
		"sql/notes.txt": &fstest.MapFile{Data: []byte("ignored")},
	}
	if err := Apply(context.Background(), db, migrations, "sql"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := countRows(t, db, "SELECT COUNT(*) FROM schema_migrations WHERE name = 'sql/001_a.sql'"); got != 1 {
		t.Fatalf("expected rooted migration key, got %d rows", got)
	}
}

func TestApplyDoesNotRecordFailedMigration(t *testing.T) {
	db := openTestDB(t)
	bad := fstest.MapFS{
		"001_bad.sql": &fstest.MapFile{Data: []byte("CREAT TABLE nope(id INT);")},
	}
	if err := Apply(context.Background(), db, bad, ""); err == nil {
		t.Fatal("expected failure")
	}
	if got := countRows(t, db, "SELECT COUNT(*) FROM schema_migrations"); got != 0 {
		t.Fatalf("migration rows = %d, want 0", got)
	}
}

func TestApplyRejectsNilInputs(t *testing.T) {
	if err := Apply(context.Background(), nil, fstest.MapFS{}, ""); err == nil {
		t.Fatal("expected nil db error")
	}
	if err := Apply(context.Background(), openTestDB(t), nil, ""); err == nil {
		t.Fatal("expected nil fs error")
	}
}

func TestUpSection(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "no markers", content: "SELECT 1;", want: "SELECT 1;"},
		{name: "up only", content: "-- +migrate Up\nSELECT 1;", want: "\nSELECT 1;"},
		{name: "up and down", content: "-- +migrate Up\nSELECT 1;\n-- +migrate Down\nSELECT 2;", want: "\nSELECT 1;\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := UpSection(tc.content); got != tc.want {
				t.Fatalf("UpSection() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIsAlreadyExistsError(t *testing.T) {
	if IsAlreadyExistsError(nil) {
		t.Fatal("nil error should not match")
	}
	if !IsAlreadyExistsError(errors.New("table sessions already exists")) {
		t.Fatal("expected already exists match")
	}
	if !IsAlreadyExistsError(errors.New("duplicate column name: role")) {
		t.Fatal("expected duplicate column match")
	}
	if IsAlreadyExistsError(errors.New("syntax error")) {
		t.Fatal("unexpected match")
	}
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "migrate.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func countRows(t *testing.T, db *sql.DB, query string) int64 {
	t.Helper()
	var n int64
	if err := db.QueryRow(query).Scan(&n); err != nil {
		t.Fatalf("query %q: %v", query, err)
	}
	return n
}
