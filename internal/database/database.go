package database

import (
	"database/sql"
	"embed"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrations embed.FS

type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// Config selects the driver. Path is used by sqlite, DSN by postgres.
type Config struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

// DB is a migrated connection pool that knows its SQL dialect. Queries are
// written with ? placeholders and passed through Rebind.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open opens a SQLite database at the given path and runs migrations.
func Open(dbPath string) (*DB, error) {
	return OpenConfig(Config{Driver: string(SQLite), Path: dbPath})
}

// OpenConfig opens the configured database and runs migrations.
func OpenConfig(cfg Config) (*DB, error) {
	var (
		db      *sql.DB
		dialect Dialect
		err     error
	)
	switch Dialect(cfg.Driver) {
	case SQLite, "":
		dialect = SQLite
		db, err = sql.Open("sqlite", cfg.Path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
		if err == nil && cfg.Path == ":memory:" {
			// every connection would get its own empty database
			db.SetMaxOpenConns(1)
		}
	case Postgres:
		dialect = Postgres
		db, err = sql.Open("pgx", cfg.DSN)
	default:
		return nil, fmt.Errorf("open db: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := runMigrations(db, dialect); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &DB{DB: db, Dialect: dialect}, nil
}

func runMigrations(db *sql.DB, dialect Dialect) error {
	dir, err := setupGoose(dialect)
	if err != nil {
		return err
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func setupGoose(dialect Dialect) (string, error) {
	goose.SetBaseFS(migrations)

	gooseDialect := "sqlite3"
	if dialect == Postgres {
		gooseDialect = "postgres"
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return "", fmt.Errorf("set dialect: %w", err)
	}
	return "migrations/" + string(dialect), nil
}

// Status prints the migration status of the database.
func (db *DB) Status() error {
	dir, err := setupGoose(db.Dialect)
	if err != nil {
		return err
	}
	if err := goose.Status(db.DB, dir); err != nil {
		return fmt.Errorf("goose status: %w", err)
	}
	return nil
}

// Rebind rewrites ? placeholders into the dialect's positional form.
func (db *DB) Rebind(query string) string {
	if db.Dialect != Postgres {
		return query
	}
	var b strings.Builder
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
