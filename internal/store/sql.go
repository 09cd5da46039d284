package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQLStore implements the Store interface on top of sqlx. It speaks both
// SQLite (modernc) and PostgreSQL (pgx); queries are written with "?"
// placeholders and rebound for the active driver.
type SQLStore struct {
	db      *sqlx.DB
	dialect string
	now     func() time.Time
}

// Option configures a SQLStore.
type Option func(*SQLStore)

// WithClock overrides the time source used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *SQLStore) {
		s.now = now
	}
}

// Open opens a store for the given driver ("sqlite" or "postgres") and
// runs any pending schema migrations.
func Open(driver, dsn string, opts ...Option) (*SQLStore, error) {
	switch driver {
	case DriverSQLite, "":
		return NewSQLiteStore(dsn, opts...)
	case DriverPostgres:
		return NewPostgresStore(dsn, opts...)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath with
// foreign keys and WAL enabled on every connection, and runs any pending
// schema migrations. ":memory:" opens a private in-memory database.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLStore, error) {
	memory := dbPath == ":memory:"

	params := []string{
		"_pragma=foreign_keys(1)",
		"_pragma=busy_timeout(5000)",
		"_time_format=sqlite",
	}
	if !memory {
		params = append(params, "_pragma=journal_mode(WAL)")
	}
	dsn := dbPath + "?" + strings.Join(params, "&")

	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if memory {
		db.SetMaxOpenConns(1)
	}

	return newSQLStore(db, DriverSQLite, opts)
}

// NewPostgresStore connects to PostgreSQL through the pgx stdlib driver and
// runs any pending schema migrations.
func NewPostgresStore(dsn string, opts ...Option) (*SQLStore, error) {
	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres db: %w", err)
	}
	return newSQLStore(db, DriverPostgres, opts)
}

func newSQLStore(db *sqlx.DB, dialect string, opts []Option) (*SQLStore, error) {
	s := &SQLStore{
		db:      db,
		dialect: dialect,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", dialect, err)
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order, each in its own transaction.
func (s *SQLStore) runMigrations() error {
	if _, err := s.db.Exec(schemaVersionTable); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	currentVersion := 0
	err := s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		err := s.withTx(context.Background(), func(tx *sqlx.Tx) error {
			_, err := tx.Exec(m.sql)
			return err
		})
		if err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// rebind converts "?" placeholders for the active driver.
func (s *SQLStore) rebind(query string) string {
	return s.db.Rebind(query)
}

// containsExpr returns a case-insensitive substring predicate on col taking
// one bound argument. Unlike LIKE, the argument needs no wildcard escaping.
func (s *SQLStore) containsExpr(col string) string {
	if s.dialect == DriverPostgres {
		return "strpos(lower(" + col + "), lower(?)) > 0"
	}
	return "instr(lower(" + col + "), lower(?)) > 0"
}

// withTx runs fn inside a transaction, committing when fn returns nil.
func (s *SQLStore) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", translateErr(err))
	}
	return nil
}

// queryer is satisfied by both *sqlx.DB and *sqlx.Tx.
type queryer interface {
	sqlx.QueryerContext
	Rebind(query string) string
}

// rowsAffected reports whether a statement touched at least one row.
func rowsAffected(result interface{ RowsAffected() (int64, error) }) bool {
	rows, _ := result.RowsAffected()
	return rows > 0
}
