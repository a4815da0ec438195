package store

// partitionSchema contains all SQL statements for one user partition.
// Every table is keyed by calendar date: ingestion upserts by date and a
// re-upload of the same date replaces the prior row entirely.
const partitionSchema = `
-- Race prediction snapshots: one row per calendar date
CREATE TABLE IF NOT EXISTS race_predictions (
    date TEXT PRIMARY KEY,  -- YYYY-MM-DD

    -- Predicted times in seconds, NULL when the snapshot lacks a distance
    time_5k INTEGER,
    time_10k INTEGER,
    time_half INTEGER,
    time_marathon INTEGER,

    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

-- Training status history: one row per calendar date
CREATE TABLE IF NOT EXISTS training_statuses (
    date TEXT PRIMARY KEY,
    status TEXT NOT NULL,

    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

-- Heat/altitude acclimation metrics: one row per calendar date
CREATE TABLE IF NOT EXISTS acclimation (
    date TEXT PRIMARY KEY,
    heat_pct INTEGER,
    altitude_pct INTEGER,

    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

-- Summarized activities: one row per calendar date
CREATE TABLE IF NOT EXISTS activities (
    date TEXT PRIMARY KEY,
    activity_type TEXT NOT NULL,
    distance_meters REAL NOT NULL,
    duration_seconds REAL NOT NULL,

    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_activities_type ON activities(activity_type);
`
