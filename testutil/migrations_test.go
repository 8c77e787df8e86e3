package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoroute/trip-planner/backend/migrations"
	"github.com/ecoroute/trip-planner/backend/testutil"
)

// TestMigrations checks the migration round trip against a real Postgres:
// reset, apply everything, inspect the trips schema, roll back.
//
// The test is skipped when TEST_DATABASE_URL is not set.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)
	ctx := context.Background()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	require.NoError(t, err, "create goose provider")

	// Another package's TestMain may already have migrated this shared DB.
	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "initial reset")

	versions, err := migrations.Up(ctx, db)
	require.NoError(t, err)
	assert.Contains(t, versions, int64(1))

	assert.True(t, tableExists(t, db, "trips"))
	assert.Equal(t, "jsonb", columnType(t, db, "trips", "ai_itinerary"))
	assert.Equal(t, "ARRAY", columnType(t, db, "trips", "preferences"))

	again, err := migrations.Up(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, again, "second run applies nothing")

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")
	assert.False(t, tableExists(t, db, "trips"))
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`
	var exists bool
	require.NoError(t, db.QueryRowContext(context.Background(), q, table).Scan(&exists))
	return exists
}

func columnType(t *testing.T, db *sql.DB, table, column string) string {
	t.Helper()
	const q = `
		SELECT data_type FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1 AND column_name = $2`
	var typ string
	require.NoError(t, db.QueryRowContext(context.Background(), q, table, column).Scan(&typ))
	return typ
}
