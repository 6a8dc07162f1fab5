package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations
var migrations embed.FS

// Dialect identifies the SQL flavour behind a DB.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

const pgUniqueViolation = "23505"

// DB is a connection pool that knows which dialect it speaks.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// New creates a new database connection pool. URLs starting with postgres://
// or postgresql:// use pgx; anything else is treated as a SQLite path.
func New(databaseURL string) (*DB, error) {
	dialect, driver, dsn := resolve(databaseURL)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if dialect == SQLite {
		// one writer at a time; also keeps :memory: databases on a single connection
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{DB: db, Dialect: dialect}, nil
}

func resolve(databaseURL string) (Dialect, string, string) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return Postgres, "pgx", databaseURL
	}

	p := strings.TrimPrefix(databaseURL, "sqlite://")
	p = strings.TrimPrefix(p, "sqlite:")
	p = strings.TrimPrefix(p, "file:")
	if p == "" || p == ":memory:" {
		return SQLite, "sqlite", "file::memory:?_pragma=foreign_keys(1)"
	}

	sep := "?"
	if strings.Contains(p, "?") {
		sep = "&"
	}
	return SQLite, "sqlite", "file:" + p + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate applies the embedded schema migrations for the DB's dialect.
func Migrate(ctx context.Context, db *DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{})

	gooseDialect := "sqlite3"
	if db.Dialect == Postgres {
		gooseDialect = "postgres"
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}

	if err := gooseUpContext(ctx, db.DB, path.Join("migrations", string(db.Dialect))); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Rebind rewrites ?-style placeholders into the DB's native form.
func (db *DB) Rebind(query string) string {
	if db.Dialect != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsUniqueViolation reports whether err comes from a unique constraint.
func IsUniqueViolation(err error) bool {
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	log.Info().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	log.Fatal().Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
