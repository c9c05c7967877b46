package db

// schema defines the SQL statements to create the application's
// database schema for SQLite. It is designed to be idempotent using
// `CREATE TABLE IF NOT EXISTS`.
const schema = `
CREATE TABLE IF NOT EXISTS created_records (
    record_id    TEXT PRIMARY KEY, -- Salesforce 18 character id
    object_type  TEXT NOT NULL,    -- e.g. Account, Lead
    natural_key  TEXT,             -- e.g. the account name
    run_id       TEXT NOT NULL,    -- uuid of the training run
    created_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_created_records_run
    ON created_records (run_id);
`

// createdInsertSQL journals a created record, ignoring replays of the
// same record id.
const createdInsertSQL = `
INSERT INTO created_records (record_id, object_type, natural_key, run_id, created_at)
VALUES (:record_id, :object_type, :natural_key, :run_id, :created_at)
ON CONFLICT (record_id) DO NOTHING;
`

// createdListSQL lists all journaled records, oldest first.
const createdListSQL = `
SELECT record_id, object_type, natural_key, run_id, created_at
FROM created_records
ORDER BY created_at, record_id;
`

// createdDeleteSQL removes journal rows by record id.
const createdDeleteSQL = `
DELETE FROM created_records WHERE record_id IN (?);
`
