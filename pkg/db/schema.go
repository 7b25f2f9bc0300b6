package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- One snapshot per tab; data is the JSON-encoded PageSnapshot
CREATE TABLE IF NOT EXISTS snapshots (
    tab_id INTEGER PRIMARY KEY,
    data TEXT NOT NULL,
    updated_at INTEGER NOT NULL        -- unix millis, mirrors data.updatedAt
);

CREATE INDEX IF NOT EXISTS idx_snapshots_updated ON snapshots(updated_at);

-- Delta-maintained visit counts; zero rows are deleted, never stored
CREATE TABLE IF NOT EXISTS category_analytics (
    category TEXT PRIMARY KEY,
    count INTEGER NOT NULL CHECK (count >= 0)
);

-- Capped log of best-deal changes, newest by seq
CREATE TABLE IF NOT EXISTS action_history (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    category TEXT NOT NULL,
    action TEXT NOT NULL,
    tab_id INTEGER NOT NULL,
    url TEXT,
    timestamp INTEGER NOT NULL
);

-- Capped dwell-time log
CREATE TABLE IF NOT EXISTS focus_events (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    category TEXT NOT NULL,
    duration_ms INTEGER NOT NULL CHECK (duration_ms >= 0),
    timestamp INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_focus_events_ts ON focus_events(timestamp);

-- Free-form settings (modelVersion)
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`
