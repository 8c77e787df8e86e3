// Package testutil provides shared helpers for the trip store integration
// tests. Every helper skips the calling test when TEST_DATABASE_URL is unset.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/ecoroute/trip-planner/backend/migrations"
)

// NewPool returns a pool on TEST_DATABASE_URL with every migration applied.
// The pool is closed when the test finishes.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pool := connect(t)

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	if _, err := migrations.Up(context.Background(), db); err != nil {
		t.Fatalf("testutil.NewPool: %v", err)
	}
	return pool
}

// NewTx begins a transaction on a migrated pool and rolls it back when the
// test finishes, so nothing a test writes outlives it.
func NewTx(t *testing.T) pgx.Tx {
	t.Helper()
	ctx := context.Background()

	tx, err := NewPool(t).Begin(ctx)
	if err != nil {
		t.Fatalf("testutil.NewTx: begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(ctx) })
	return tx
}

// NewSQLDB returns a *sql.DB on TEST_DATABASE_URL without migrating it.
// Migration tests use it to drive goose directly.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()
	db := stdlib.OpenDBFromPool(connect(t))
	t.Cleanup(func() { db.Close() })
	return db
}

// SeedTrip inserts a minimal draft trip owned by owner and returns its id.
func SeedTrip(t *testing.T, tx pgx.Tx, owner uuid.UUID) uuid.UUID {
	t.Helper()
	const q = `
		INSERT INTO trips (user_id, title, destination, start_date, end_date)
		VALUES (@user_id, @title, @destination, @start_date, @end_date)
		RETURNING id`
	start := time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC)
	args := pgx.NamedArgs{
		"user_id":     owner,
		"title":       "Seeded trip",
		"destination": "Lisbon",
		"start_date":  start,
		"end_date":    start.AddDate(0, 0, 2),
	}
	var id uuid.UUID
	if err := tx.QueryRow(context.Background(), q, args).Scan(&id); err != nil {
		t.Fatalf("testutil.SeedTrip: %v", err)
	}
	return id
}

// connect opens and pings a pool, skipping the test when no database is
// configured.
func connect(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}

	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("testutil: open pool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil: ping: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}
