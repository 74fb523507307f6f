package credentials

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/bookauth/internal/client/repositories"
	"github.com/dmitrijs2005/bookauth/internal/logging"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := repositories.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "session.db"), logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func countSlots(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM slots`).Scan(&n))
	return n
}

func TestLoad_EmptyDatabase(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	c, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, c.Empty())
	assert.False(t, c.Complete())

	tok, err := r.Token(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestSaveThenLoad(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	in := Credentials{Token: "tok-1", User: []byte(`{"id":"1"}`)}
	require.NoError(t, r.Save(ctx, in))

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, got)
	assert.Equal(t, 2, countSlots(t, db))

	tok, err := r.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)
}

func TestSave_OverwritesBothSlots(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, Credentials{Token: "old", User: []byte("u1")}))
	require.NoError(t, r.Save(ctx, Credentials{Token: "new", User: []byte("u2")}))

	got, err := r.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, Credentials{Token: "new", User: []byte("u2")}, got)
}

func TestSave_RejectsIncomplete(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	err := r.Save(ctx, Credentials{Token: "tok"})
	require.ErrorIs(t, err, ErrIncomplete)
	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, "CREDENTIALS_INCOMPLETE", oopsErr.Code())

	require.ErrorIs(t, r.Save(ctx, Credentials{User: []byte("u")}), ErrIncomplete)
	assert.Equal(t, 0, countSlots(t, db), "nothing may be written when a slot is missing")
}

func TestClear_RemovesBothSlotsAndIsIdempotent(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Save(ctx, Credentials{Token: "tok", User: []byte("u")}))
	require.NoError(t, r.Clear(ctx))
	require.NoError(t, r.Clear(ctx))

	c, err := r.Load(ctx)
	require.NoError(t, err)
	assert.True(t, c.Empty())
	assert.Equal(t, 0, countSlots(t, db))
}

func TestClearIfToken(t *testing.T) {
	tests := []struct {
		name        string
		stored      *Credentials
		token       string
		wantCleared bool
		wantSlots   int
	}{
		{name: "matching token clears both slots", stored: &Credentials{Token: "stale", User: []byte("u")}, token: "stale", wantCleared: true},
		{name: "replaced token is kept", stored: &Credentials{Token: "fresh", User: []byte("u")}, token: "stale", wantSlots: 2},
		{name: "tokenless request against empty storage", token: "", wantCleared: true},
		{name: "tokenless request keeps a stored session", stored: &Credentials{Token: "fresh", User: []byte("u")}, token: "", wantSlots: 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db := setupDB(t)
			r := NewSQLiteRepository(db)
			ctx := context.Background()
			if tc.stored != nil {
				require.NoError(t, r.Save(ctx, *tc.stored))
			}

			cleared, err := r.ClearIfToken(ctx, tc.token)
			require.NoError(t, err)
			assert.Equal(t, tc.wantCleared, cleared)
			assert.Equal(t, tc.wantSlots, countSlots(t, db))
		})
	}
}

func TestLoad_PartialSlotIsReported(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	_, err := db.Exec(`INSERT INTO slots(key, value) VALUES ('auth_token', 'orphan')`)
	require.NoError(t, err)

	c, err := r.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "orphan", c.Token)
	assert.Nil(t, c.User)
	assert.False(t, c.Complete())
	assert.False(t, c.Empty())
}

func TestErrorsWrapped_WhenDatabaseClosed(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := r.Token(ctx)
	require.ErrorContains(t, err, "failed to get slot[auth_token]")

	_, err = r.Load(ctx)
	require.Error(t, err)

	require.Error(t, r.Save(ctx, Credentials{Token: "t", User: []byte("u")}))
	require.ErrorContains(t, r.Clear(ctx), "failed to clear slots")
}
