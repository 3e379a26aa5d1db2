package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned by the Get* primitives when no row matches the
// requested key. Absence is a normal outcome; callers branch on it.
var ErrNotFound = errors.New("row not found")

// DBTX is satisfied by both *sql.DB and *sql.Tx so every entity primitive
// can run standalone or inside a reconciliation pass transaction.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// InitDB initializes the database connection. It takes the database path as
// input, creates the parent directory if needed and ensures the schema.
func InitDB(dbPath string) (*sql.DB, error) {
	// Ensure the directory for the database file exists.
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open the SQLite database with foreign key enforcement; the cascade
	// rules in the schema below depend on it.
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Ping the database to verify the connection.
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	log.Println("Successfully connected to the database at", dbPath)
	return db, nil
}

// createSchema creates the mirror tables if they don't exist.
func createSchema(db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS categories (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            deleted INTEGER NOT NULL DEFAULT 0
        );`,
		`CREATE TABLE IF NOT EXISTS channels (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            category_id TEXT REFERENCES categories(id) ON DELETE CASCADE,
            is_staff INTEGER NOT NULL,
            deleted INTEGER NOT NULL DEFAULT 0
        );`,
		`CREATE TABLE IF NOT EXISTS threads (
            id TEXT PRIMARY KEY,
            parent_channel_id TEXT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
            name TEXT NOT NULL,
            archived INTEGER NOT NULL,
            auto_archive_duration INTEGER NOT NULL,
            locked INTEGER NOT NULL,
            type TEXT NOT NULL,
            created_at TEXT NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_threads_type ON threads(type);`,
		`CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            name TEXT NOT NULL,
            avatar_hash TEXT,
            guild_avatar_hash TEXT,
            joined_at TEXT NOT NULL,
            created_at TEXT NOT NULL,
            is_staff INTEGER NOT NULL,
            bot INTEGER NOT NULL DEFAULT 0,
            in_guild INTEGER NOT NULL DEFAULT 0,
            public_flags TEXT NOT NULL DEFAULT '{}',
            pending INTEGER NOT NULL DEFAULT 0
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            id TEXT PRIMARY KEY,
            channel_id TEXT NOT NULL REFERENCES channels(id) ON DELETE CASCADE,
            thread_id TEXT REFERENCES threads(id) ON DELETE CASCADE,
            author_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            created_at TEXT,
            is_deleted INTEGER NOT NULL DEFAULT 0,
            content_hash TEXT
        );`,
		`CREATE INDEX IF NOT EXISTS idx_messages_channel ON messages(channel_id);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(thread_id);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_author ON messages(author_id);`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back if fn returns an error.
func WithTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Printf("Error rolling back transaction: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// IsKeyConflict reports whether err is a primary key (or unique) constraint
// violation. A conflict on insert means another pass already created the
// row, which callers treat as success.
func IsKeyConflict(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// placeholders returns an SQL placeholder list for n values, e.g. "?,?,?".
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	p := strings.Repeat("?,", n)
	return p[:len(p)-1]
}

// toAnySlice converts string ids to driver arguments.
func toAnySlice(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
