package store

type migration struct {
	version  int
	name     string
	sqlite   string
	postgres string
}

// migrations are applied in order and never edited once released.
var migrations = []migration{
	{
		version: 1,
		name:    "admin users",
		sqlite: `CREATE TABLE IF NOT EXISTS admin_users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TEXT NOT NULL DEFAULT (datetime('now','localtime'))
)`,
		postgres: `CREATE TABLE IF NOT EXISTS admin_users (
    id            BIGSERIAL PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	},
	{
		version:  2,
		name:     "password change time",
		sqlite:   `ALTER TABLE admin_users ADD COLUMN password_changed_at TEXT`,
		postgres: `ALTER TABLE admin_users ADD COLUMN password_changed_at TIMESTAMPTZ`,
	},
}
