package store

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the event database schema.
const Schema = `
CREATE TABLE IF NOT EXISTS attack_events (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL,
    request_id TEXT,
    rule_id TEXT NOT NULL,
    rule_name TEXT NOT NULL,
    payload TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attack_events_created_at ON attack_events(created_at);
CREATE INDEX IF NOT EXISTS idx_attack_events_rule_id ON attack_events(rule_id);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// insertSchemaVersion records the schema version, ignoring duplicates.
const insertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

// getSchemaVersion reads the highest recorded schema version.
const getSchemaVersion = `SELECT MAX(version) FROM schema_version`
