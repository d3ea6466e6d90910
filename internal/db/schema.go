package db

const schemaSQL = `
CREATE TABLE IF NOT EXISTS known_devices (
	address      TEXT PRIMARY KEY,
	name         TEXT NOT NULL DEFAULT '',
	last_seen_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
`
