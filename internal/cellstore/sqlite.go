package cellstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/2beens/elite30/internal/telemetry/tracing"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS progress_slot
(
    slot       TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// SQLite keeps the value in one row of a local sqlite database file.
type SQLite struct {
	db   *sql.DB
	slot string
}

// OpenSQLite opens (or creates) the database file at path.
func OpenSQLite(ctx context.Context, path, slot string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create progress_slot table: %w", err)
	}

	return &SQLite{
		db:   db,
		slot: slot,
	}, nil
}

func (s *SQLite) Read(ctx context.Context) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cellstore.sqlite.read")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var value string
	err = s.db.QueryRowContext(ctx, `SELECT value FROM progress_slot WHERE slot = ?`, s.slot).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("select slot %s: %w", s.slot, err)
	}
	return value, nil
}

func (s *SQLite) Write(ctx context.Context, value string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cellstore.sqlite.write")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := s.db.ExecContext(
		ctx,
		`INSERT INTO progress_slot (slot, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (slot) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.slot, value,
	); err != nil {
		return fmt.Errorf("upsert slot %s: %w", s.slot, err)
	}
	return nil
}

func (s *SQLite) Clear(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cellstore.sqlite.clear")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM progress_slot WHERE slot = ?`, s.slot); err != nil {
		return fmt.Errorf("delete slot %s: %w", s.slot, err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
