package repositories

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/bookauth/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, name).Scan(&n)
	require.NoError(t, err)
	return n > 0
}

func TestInitDatabase_CreatesSlotsTable(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "session.db")

	db, err := InitDatabase(ctx, dsn, logging.Nop())
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.PingContext(ctx))
	require.True(t, tableExists(t, db, "goose_db_version"))
	require.True(t, tableExists(t, db, "slots"))
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "session.db")

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, RunMigrations(ctx, db, logging.Nop()))
	require.NoError(t, RunMigrations(ctx, db, logging.Nop()), "second run must be a no-op")
	require.True(t, tableExists(t, db, "slots"))
}

func TestInitDatabase_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "session.db")

	db, err := InitDatabase(ctx, dsn, logging.Nop())
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO slots(key, value) VALUES ('auth_token', 'tok')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = InitDatabase(ctx, dsn, logging.Nop())
	require.NoError(t, err)
	defer db.Close()

	var got string
	require.NoError(t, db.QueryRowContext(ctx, `SELECT value FROM slots WHERE key='auth_token'`).Scan(&got))
	require.Equal(t, "tok", got)
}

func TestRunMigrations_LogsThroughClientLogger(t *testing.T) {
	ctx := context.Background()
	var buf strings.Builder
	log := logging.New("debug", "text", &buf)

	db, err := InitDatabase(ctx, filepath.Join(t.TempDir(), "session.db"), log)
	require.NoError(t, err)
	defer db.Close()

	out := buf.String()
	assert.Contains(t, out, "00001_create_slots.sql")
	assert.Contains(t, out, "component=migrations")
	assert.Contains(t, out, "level=DEBUG")
}
