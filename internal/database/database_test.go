package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		in      string
		dialect Dialect
		driver  string
		dsn     string
	}{
		{"postgres://u:p@h/db", Postgres, "pgx", "postgres://u:p@h/db"},
		{"postgresql://h/db?sslmode=disable", Postgres, "pgx", "postgresql://h/db?sslmode=disable"},
		{":memory:", SQLite, "sqlite", "file::memory:?_pragma=foreign_keys(1)"},
		{"", SQLite, "sqlite", "file::memory:?_pragma=foreign_keys(1)"},
		{"./app.db", SQLite, "sqlite", "file:./app.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
		{"sqlite://data.db?mode=rwc", SQLite, "sqlite", "file:data.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, driver, dsn := resolve(tt.in)
			assert.Equal(t, tt.dialect, d)
			assert.Equal(t, tt.driver, driver)
			assert.Equal(t, tt.dsn, dsn)
		})
	}
}

func TestRebind(t *testing.T) {
	q := "SELECT id FROM posts WHERE slug = ? AND id <> ?"

	lite := &DB{Dialect: SQLite}
	assert.Equal(t, q, lite.Rebind(q))

	pg := &DB{Dialect: Postgres}
	assert.Equal(t, "SELECT id FROM posts WHERE slug = $1 AND id <> $2", pg.Rebind(q))
}

func TestNewAndMigrate_SQLiteMemory(t *testing.T) {
	db, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(context.Background(), db))

	_, err = db.Exec(`INSERT INTO users (username, email, password_hash) VALUES ('a', 'a@x', 'h')`)
	require.NoError(t, err)

	var active, admin bool
	require.NoError(t, db.QueryRow(`SELECT is_active, is_admin FROM users WHERE username = 'a'`).Scan(&active, &admin))
	assert.False(t, active)
	assert.False(t, admin)

	_, err = db.Exec(`INSERT INTO users (username, email, password_hash) VALUES ('a', 'b@x', 'h')`)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestMigrate_DeleteUserNullsPostOwner(t *testing.T) {
	db, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(context.Background(), db))

	_, err = db.Exec(`INSERT INTO users (id, username, email, password_hash) VALUES (7, 'a', 'a@x', 'h')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO posts (user_id, slug, title, text) VALUES (7, 's', 't', 'x')`)
	require.NoError(t, err)
	_, err = db.Exec(`DELETE FROM users WHERE id = 7`)
	require.NoError(t, err)

	var owner sql.NullInt64
	require.NoError(t, db.QueryRow(`SELECT user_id FROM posts WHERE slug = 's'`).Scan(&owner))
	assert.False(t, owner.Valid)
}

func TestMigrate_UsesDialectDirectory(t *testing.T) {
	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, Migrate(context.Background(), &DB{Dialect: Postgres}))
	assert.Equal(t, "migrations/postgres", gotDir)

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	err := Migrate(context.Background(), &DB{Dialect: SQLite})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
	assert.False(t, IsUniqueViolation(nil))
}
