// Package store persists posts to an embedded SQLite database. It is one of
// the pipeline's three sinks; repeated runs with overlapping batches are safe
// because inserts ignore primary-key conflicts.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/alx/twitter-scraper-finetune/internal/types"
)

// Store handles all database operations
type Store struct {
	db *sql.DB
}

// New creates a new Store with SQLite backend
func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tweets (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		text TEXT NOT NULL,
		timestamp DATETIME,
		likes INTEGER,
		retweets INTEGER,
		replies INTEGER,
		url TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_tweets_username ON tweets(username);
	CREATE INDEX IF NOT EXISTS idx_tweets_timestamp ON tweets(timestamp);
	`

	_, err := s.db.Exec(schema)
	return err
}

// UpsertBatch inserts posts, ignoring any whose id already exists. The whole
// batch runs in one transaction so a repeated run either fully applies or
// leaves the table unchanged.
func (s *Store) UpsertBatch(ctx context.Context, posts []types.Post) error {
	if len(posts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tweets (id, username, text, timestamp, likes, retweets, replies, url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range posts {
		var ts any
		if p.HasTimestamp() {
			ts = p.Timestamp.UTC()
		}
		if _, err := stmt.ExecContext(ctx, p.ID, p.Username, p.Text, ts,
			p.Likes, p.Retweets, p.Replies, p.PermanentURL); err != nil {
			return fmt.Errorf("failed to insert tweet %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// PostExists checks if a post ID already exists
func (s *Store) PostExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tweets WHERE id = ?)`, id).Scan(&exists)
	return exists, err
}

// CountForUser returns the number of stored tweets for an account
func (s *Store) CountForUser(ctx context.Context, username string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tweets WHERE username = ?`, username).Scan(&count)
	return count, err
}
