// Package db provides the local run log for the training module. Every
// record the trainer creates in the org is journaled here, so that the
// wipe command can later remove stray demo records and the upsert
// scenarios can be audited across runs. The log is a plain SQLite file
// and holds no org data beyond identifiers and natural keys.
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx" // helper library
	_ "modernc.org/sqlite"    // pure go sqlite driver
)

// DB provides a wrapper around the sql.DB connection for
// application-specific db operations.
type DB struct {
	*sqlx.DB
}

// CreatedRecord is one journal row: a record created in the org by a
// training run.
type CreatedRecord struct {
	RecordID   string    `db:"record_id"`
	ObjectType string    `db:"object_type"`
	NaturalKey string    `db:"natural_key"`
	RunID      string    `db:"run_id"`
	CreatedAt  time.Time `db:"created_at"`
}

// New creates a new connection to an SQLite database at the given path.
func New(dbPath string) (*DB, error) {

	// dataSource is the default setting for file-based databases.
	dataSource := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", dbPath)

	// for in-memory test databases, check the necessary cached setting is used.
	if strings.Contains(dbPath, ":memory:") {
		if !strings.Contains(dbPath, "cache=shared") {
			return nil, fmt.Errorf("in-memory connection %q should contain '?cache=shared'", dbPath)
		}
		dataSource = dbPath
	}
	db, err := sqlx.Open("sqlite", dataSource)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

// InitSchema creates the necessary tables if they don't already exist.
// The schema can be run idempotently.
func (db *DB) InitSchema() error {
	_, err := db.ExecContext(context.Background(), schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// LogCreated journals a batch of created records. Re-logging a record
// id is a no-op, so callers may safely journal a batch that partially
// overlaps an earlier run.
func (db *DB) LogCreated(ctx context.Context, records []CreatedRecord) error {
	if len(records) == 0 {
		return nil
	}
	for i := range records {
		if records[i].CreatedAt.IsZero() {
			records[i].CreatedAt = time.Now().UTC()
		}
	}
	_, err := db.NamedExecContext(ctx, createdInsertSQL, records)
	if err != nil {
		return fmt.Errorf("failed to journal created records: %w", err)
	}
	return nil
}

// ListCreated returns all journaled records, oldest first.
func (db *DB) ListCreated(ctx context.Context) ([]CreatedRecord, error) {
	var records []CreatedRecord
	if err := db.SelectContext(ctx, &records, createdListSQL); err != nil {
		return nil, fmt.Errorf("failed to list created records: %w", err)
	}
	return records, nil
}

// Forget removes the journal rows for the given record ids, normally
// after the corresponding org records have been deleted.
func (db *DB) Forget(ctx context.Context, recordIDs []string) error {
	if len(recordIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In(createdDeleteSQL, recordIDs)
	if err != nil {
		return fmt.Errorf("failed to build journal delete query: %w", err)
	}
	if _, err := db.ExecContext(ctx, db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to delete journal rows: %w", err)
	}
	return nil
}
