package store

const schema = `
CREATE TABLE IF NOT EXISTS packages (
    name TEXT PRIMARY KEY,
    pretty_name TEXT NOT NULL DEFAULT '',
    version TEXT NOT NULL,
    type TEXT NOT NULL,
    source_type TEXT NOT NULL,
    source_url TEXT NOT NULL,
    source_reference TEXT NOT NULL DEFAULT '',
    binaries TEXT NOT NULL DEFAULT '[]',
    installed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS operations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    kind TEXT NOT NULL,
    package TEXT NOT NULL,
    from_version TEXT NOT NULL DEFAULT '',
    from_reference TEXT NOT NULL DEFAULT '',
    to_version TEXT NOT NULL,
    to_reference TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    scratch_dir TEXT NOT NULL DEFAULT '',
    deleted_count INTEGER NOT NULL DEFAULT 0,
    failure_step TEXT NOT NULL DEFAULT '',
    failure_error TEXT NOT NULL DEFAULT '',
    started_at TEXT NOT NULL,
    finished_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_operations_package ON operations(package);
CREATE INDEX IF NOT EXISTS idx_operations_started ON operations(started_at);
`
