package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/i474232898/mollier-diagram/internal/mollier"
)

//go:embed sql/schema.sql
var schemaSQL string

//go:embed sql/get-readings.sql
var getReadingsSQL string

//go:embed sql/insert-reading.sql
var insertReadingSQL string

// tsLayout is RFC 3339 with a fixed-width fraction so that stored timestamps
// sort lexically in time order.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteSource reads sensor history from a local reading log.
type SQLiteSource struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database file at path and
// applies the schema.
func OpenSQLite(path string) (*SQLiteSource, error) {
	dsn, err := buildDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	// One writer at a time; readers share it.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	s := NewSQLiteSource(db)
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteSource wraps an already opened database.
func NewSQLiteSource(db *sql.DB) *SQLiteSource {
	return &SQLiteSource{db: db}
}

// Name implements mollier.HistorySource.
func (s *SQLiteSource) Name() string { return "sqlite" }

// Migrate creates the readings table if it does not exist.
func (s *SQLiteSource) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Insert stores one reading, replacing any reading of the same entity at the
// same instant.
func (s *SQLiteSource) Insert(ctx context.Context, entityID string, r mollier.Reading) error {
	_, err := s.db.ExecContext(ctx, insertReadingSQL, entityID, r.Timestamp.UTC().Format(tsLayout), r.Value)
	if err != nil {
		return fmt.Errorf("insert reading for %s: %w", entityID, err)
	}
	return nil
}

// History implements mollier.HistorySource. Both window bounds are inclusive.
func (s *SQLiteSource) History(ctx context.Context, entityID string, window mollier.Window) ([]mollier.Reading, error) {
	rows, err := s.db.QueryContext(ctx, getReadingsSQL,
		entityID,
		window.From.UTC().Format(tsLayout),
		window.To.UTC().Format(tsLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("query readings for %s: %w", entityID, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close readings rows", "error", err)
		}
	}()

	out := []mollier.Reading{}
	for rows.Next() {
		var ts string
		var r mollier.Reading
		if err := rows.Scan(&ts, &r.Value); err != nil {
			return nil, err
		}
		r.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp %q: %w", ts, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteSource) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func buildDSN(path string) (string, error) {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path), nil
}
