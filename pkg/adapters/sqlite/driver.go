// Package sqlite implements the accelerate driver on top of a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/aretw0/accelerate/pkg/domain"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultTable stores the cursor history.
const DefaultTable = "accelerate_state"

// DefaultBusyTimeout is how long SQLite waits on a locked database.
const DefaultBusyTimeout = 5 * time.Second

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Driver implements ports.Driver for SQLite.
// Every SetStatus appends a row, so the table doubles as an audit trail.
type Driver struct {
	db          *sql.DB
	table       string
	busyTimeout time.Duration
}

// Option configures the Driver.
type Option func(*Driver)

// WithTable overrides the bookkeeping table name.
func WithTable(name string) Option {
	return func(d *Driver) {
		d.table = name
	}
}

// WithBusyTimeout sets the SQLite busy timeout.
func WithBusyTimeout(timeout time.Duration) Option {
	return func(d *Driver) {
		d.busyTimeout = timeout
	}
}

// Open creates or opens a SQLite database at the given path.
//
// SQLite only supports one writer at a time, so the pool is limited to a single
// connection. Pragmas and the bookkeeping table are applied by Init.
func Open(path string, opts ...Option) (*Driver, error) {
	d := &Driver{
		table:       DefaultTable,
		busyTimeout: DefaultBusyTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	if !tableName.MatchString(d.table) {
		return nil, fmt.Errorf("invalid table name %q", d.table)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", domain.ErrBackendUnavailable, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to connect to database: %v", domain.ErrBackendUnavailable, err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d.db = db
	return d, nil
}

// Init applies pragmas and creates the bookkeeping table. It is idempotent.
func (d *Driver) Init(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", d.busyTimeout.Milliseconds()),
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := d.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("%w: failed to execute %q: %v", domain.ErrBackendUnavailable, pragma, err)
		}
	}

	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		status INTEGER NOT NULL,
		inserted TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`, d.table)
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", domain.ErrBackendUnavailable, d.table, err)
	}
	return nil
}

// Status returns the most recently inserted cursor.
func (d *Driver) Status(ctx context.Context) (int, bool, error) {
	var status int
	query := fmt.Sprintf("SELECT status FROM %s ORDER BY rowid DESC LIMIT 1", d.table)
	err := d.db.QueryRowContext(ctx, query).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: failed to read status: %v", domain.ErrBackendUnavailable, err)
	}
	return status, true, nil
}

// SetStatus appends a new cursor row.
func (d *Driver) SetStatus(ctx context.Context, status int) error {
	query := fmt.Sprintf("INSERT INTO %s (status, inserted) VALUES (?, ?)", d.table)
	if _, err := d.db.ExecContext(ctx, query, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("%w: failed to write status: %v", domain.ErrBackendUnavailable, err)
	}
	return nil
}

// Execute runs the step body in its own transaction. Bodies may hold several
// statements; a failing statement rolls back the whole step.
func (d *Driver) Execute(ctx context.Context, step domain.Step) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

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
	query := fmt.Sprintf("SELECT status, inserted FROM %s ORDER BY rowid", d.table)
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

// Close closes the database connection.
func (d *Driver) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}
