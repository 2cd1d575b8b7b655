// Package postgres implements the accelerate driver on top of a PostgreSQL database.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/aretw0/accelerate/pkg/domain"
	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	// DefaultSchema holds the bookkeeping table.
	DefaultSchema = "accelerate"
	// DefaultTable stores the cursor history.
	DefaultTable = "state"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Driver implements ports.Driver for PostgreSQL.
// Like the SQLite driver, every SetStatus appends a row.
//
// Broken connections are discarded by the database/sql pool and redialed on the next
// query, so a driver survives a database restart between runs.
type Driver struct {
	db     *sql.DB
	schema string
	table  string
	// qualified is the quoted "schema"."table" name.
	qualified string
}

// Option configures the Driver.
type Option func(*Driver)

// WithSchema overrides the schema holding the bookkeeping table.
func WithSchema(name string) Option {
	return func(d *Driver) {
		d.schema = name
	}
}

// WithTable overrides the bookkeeping table name.
func WithTable(name string) Option {
	return func(d *Driver) {
		d.table = name
	}
}

// Open connects to the database at dsn, a postgres:// URL or a key=value string.
// The schema and the bookkeeping table are created by Init.
func Open(ctx context.Context, dsn string, opts ...Option) (*Driver, error) {
	d := &Driver{
		schema: DefaultSchema,
		table:  DefaultTable,
	}
	for _, opt := range opts {
		opt(d)
	}
	if !identifier.MatchString(d.schema) {
		return nil, fmt.Errorf("invalid schema name %q", d.schema)
	}
	if !identifier.MatchString(d.table) {
		return nil, fmt.Errorf("invalid table name %q", d.table)
	}
	d.qualified = pgx.Identifier{d.schema, d.table}.Sanitize()

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", domain.ErrBackendUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to connect to database: %v", domain.ErrBackendUnavailable, err)
	}

	db.SetConnMaxIdleTime(5 * time.Minute)

	d.db = db
	return d, nil
}

// Init creates the schema and the bookkeeping table. It is idempotent.
func (d *Driver) Init(ctx context.Context) error {
	statements := []string{
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", pgx.Identifier{d.schema}.Sanitize()),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			status   integer,
			inserted timestamp DEFAULT clock_timestamp()
		)`, d.qualified),
	}
	for _, stmt := range statements {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: failed to create %s: %v", domain.ErrBackendUnavailable, d.qualified, err)
		}
	}
	return nil
}

// Status returns the most recently inserted cursor.
func (d *Driver) Status(ctx context.Context) (int, bool, error) {
	var status sql.NullInt64
	query := fmt.Sprintf("SELECT status FROM %s ORDER BY inserted DESC LIMIT 1", d.qualified)
	err := d.db.QueryRowContext(ctx, query).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: failed to read status: %v", domain.ErrBackendUnavailable, err)
	}
	if !status.Valid {
		return 0, false, nil
	}
	return int(status.Int64), true, nil
}

// SetStatus appends a new cursor row.
func (d *Driver) SetStatus(ctx context.Context, status int) error {
	query := fmt.Sprintf("INSERT INTO %s (status) VALUES ($1)", d.qualified)
	if _, err := d.db.ExecContext(ctx, query, status); err != nil {
		return fmt.Errorf("%w: failed to write status: %v", domain.ErrBackendUnavailable, err)
	}
	return nil
}

// Execute runs the step body in its own transaction. PostgreSQL DDL is transactional,
// so a failing statement leaves nothing of the step behind.
func (d *Driver) Execute(ctx context.Context, step domain.Step) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Without arguments the body is sent over the simple protocol, which accepts
	// several statements at once.
	if _, err := tx.ExecContext(ctx, step.Body); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// HistoryEntry is one row of the bookkeeping table.
type HistoryEntry struct {
	Status   int
	Inserted time.Time
}

// History returns every recorded cursor, oldest first.
func (d *Driver) History(ctx context.Context) ([]HistoryEntry, error) {
	query := fmt.Sprintf("SELECT status, inserted FROM %s WHERE status IS NOT NULL ORDER BY inserted", d.qualified)
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read history: %v", domain.ErrBackendUnavailable, err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.Status, &e.Inserted); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DB returns the underlying sql.DB for direct queries.
func (d *Driver) DB() *sql.DB {
	return d.db
}

// Close closes the connection pool.
func (d *Driver) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}
