package cellstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/elite30/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS progress_slot
(
    slot       VARCHAR PRIMARY KEY,
    value      TEXT        NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// Postgres keeps the value in one row of the progress_slot table.
type Postgres struct {
	db   *pgxpool.Pool
	slot string
}

// NewPostgres creates the slot table if it is missing.
func NewPostgres(ctx context.Context, db *pgxpool.Pool, slot string) (*Postgres, error) {
	if _, err := db.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("create progress_slot table: %w", err)
	}
	return &Postgres{
		db:   db,
		slot: slot,
	}, nil
}

func (p *Postgres) Read(ctx context.Context) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cellstore.postgres.read")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var value string
	err = p.db.QueryRow(
		ctx,
		`SELECT value FROM progress_slot WHERE slot = $1`,
		p.slot,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("select slot %s: %w", p.slot, err)
	}
	return value, nil
}

func (p *Postgres) Write(ctx context.Context, value string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cellstore.postgres.write")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := p.db.Exec(
		ctx,
		`INSERT INTO progress_slot (slot, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (slot) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		p.slot, value,
	); err != nil {
		return fmt.Errorf("upsert slot %s: %w", p.slot, err)
	}
	return nil
}

func (p *Postgres) Clear(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "cellstore.postgres.clear")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if _, err := p.db.Exec(ctx, `DELETE FROM progress_slot WHERE slot = $1`, p.slot); err != nil {
		return fmt.Errorf("delete slot %s: %w", p.slot, err)
	}
	return nil
}
