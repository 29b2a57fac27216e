// Package sqlite is the default persistence layer, a single-file database
// suited to single-node deployments.
package sqlite

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite" // sqlite driver
)

func InitDB(path string) (*sql.DB, error) {
	return initDatabase(path)
}

type scannable interface {
	Scan(dest ...any) error
}

func initDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// modernc sqlite is not safe for concurrent writers on one connection
	// pool; a single connection plus WAL keeps readers unblocked.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=1000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, err
		}
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, createSchema(db)
}

func createSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'active',
			created_at INT NOT NULL,
			updated_at INT NOT NULL,
			last_login_at INT,
			deleted_at INT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
		`CREATE TABLE IF NOT EXISTS user_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			token_hash TEXT NOT NULL UNIQUE,
			expires_at INT NOT NULL,
			created_at INT NOT NULL,
			last_used_at INT,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_user_sessions_token_hash ON user_sessions(token_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_user_sessions_user_id ON user_sessions(user_id)`,
		`CREATE TABLE IF NOT EXISTS api_keys (
			id TEXT PRIMARY KEY,
			created_by TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL,
			key_hash TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL,
			created_at INT NOT NULL,
			updated_at INT NOT NULL,
			last_used_at INT,
			expires_at INT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_api_keys_key_hash ON api_keys(key_hash)`,
		`CREATE INDEX IF NOT EXISTS idx_api_keys_status ON api_keys(status)`,
		`CREATE TABLE IF NOT EXISTS businesses (
			id TEXT PRIMARY KEY,
			query TEXT NOT NULL,
			name TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			website TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			rating TEXT NOT NULL DEFAULT '',
			reviews INT NOT NULL DEFAULT 0,
			plus_code TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			scraped_at INT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_businesses_query ON businesses(query)`,
		`CREATE INDEX IF NOT EXISTS idx_businesses_scraped_at ON businesses(scraped_at)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
