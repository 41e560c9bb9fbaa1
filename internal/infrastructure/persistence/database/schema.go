package database

import "fmt"

// schemaStatements creates every table the application needs. The unique
// index on (user_id, request_hash) is load-bearing: it is what makes a
// duplicate cache store deterministic instead of silently creating a
// second row.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		preferences TEXT NOT NULL DEFAULT '{}',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS clothing_items (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '',
		brand TEXT NOT NULL DEFAULT '',
		style_tags TEXT NOT NULL DEFAULT '[]',
		image_path TEXT NOT NULL DEFAULT '',
		thumb_paths TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_clothing_items_user ON clothing_items(user_id)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		slot TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS style_tags (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS ai_response_cache (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		request_hash TEXT NOT NULL,
		request_data TEXT NOT NULL,
		response TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		last_accessed_at DATETIME NOT NULL,
		access_count INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_ai_cache_user_hash ON ai_response_cache(user_id, request_hash)`,
	`CREATE INDEX IF NOT EXISTS idx_ai_cache_created ON ai_response_cache(created_at)`,
}

// EnsureSchema creates all tables and indexes if they do not exist.
func (db *DB) EnsureSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
