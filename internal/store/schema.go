package store

// Schema contains the complete DDL for the run registry.
const Schema = `
-- Runs: one row per uploaded report pair working its way through the stages
CREATE TABLE IF NOT EXISTS runs (
    id            TEXT PRIMARY KEY,
    property_name TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL DEFAULT 'pending',
    stage         TEXT NOT NULL DEFAULT '',
    root_dir      TEXT NOT NULL,
    error         TEXT NOT NULL DEFAULT '',
    created_at    INTEGER NOT NULL,
    updated_at    INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

-- Run events: append-only stage progress log shown in the UI
CREATE TABLE IF NOT EXISTS run_events (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id     TEXT NOT NULL,
    stage      TEXT NOT NULL,
    status     TEXT NOT NULL,
    detail     TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_run_events_run ON run_events(run_id, id);
`
