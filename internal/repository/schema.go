// Package repository implements SQLite persistence for profiles, companies,
// memberships, invites, and submitted conversation analyses.
package repository

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id            TEXT PRIMARY KEY,
	username      TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash BLOB NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS companies (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_by TEXT NOT NULL REFERENCES profiles(id),
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS company_members (
	company_id TEXT NOT NULL REFERENCES companies(id),
	user_id    TEXT NOT NULL UNIQUE REFERENCES profiles(id),
	role       TEXT NOT NULL,
	joined_at  TEXT NOT NULL,
	PRIMARY KEY (company_id, user_id)
);

CREATE TABLE IF NOT EXISTS company_invites (
	id          TEXT PRIMARY KEY,
	company_id  TEXT NOT NULL REFERENCES companies(id),
	email       TEXT NOT NULL,
	token       TEXT NOT NULL UNIQUE,
	expires_at  TEXT NOT NULL,
	accepted_at TEXT,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS conversation_analyses (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL,
	user_id         TEXT NOT NULL REFERENCES profiles(id),
	company_id      TEXT,
	analysis        TEXT,
	transcript      TEXT,
	metadata        TEXT,
	status          TEXT NOT NULL,
	created_at      TEXT NOT NULL,
	updated_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_user ON conversation_analyses(user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_analyses_company ON conversation_analyses(company_id, created_at);
`

// InitSchema creates all tables if missing. Safe to run on every startup.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	return nil
}
