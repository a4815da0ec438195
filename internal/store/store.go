package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages one SQLite database per user under a base directory.
// Each user's data lives in its own file, so a corrupted or cleared
// partition never affects another user, and writes to different users
// never contend for the same connection.
type Store struct {
	dir string

	mu         sync.Mutex
	partitions map[string]*sql.DB
}

// Open prepares a store rooted at dir, creating the directory if needed.
// Partitions are opened lazily on first use.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &Store{
		dir:        dir,
		partitions: make(map[string]*sql.DB),
	}, nil
}

// partition returns the open database for a user, opening and migrating
// it on first access.
func (s *Store) partition(userID string) (*sql.DB, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if db, ok := s.partitions[userID]; ok {
		return db, nil
	}

	path := filepath.Join(s.dir, userID+".db")
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open partition for %s: %w", userID, err)
	}

	// SQLite works best with a single writer per file
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping partition for %s: %w", userID, err)
	}

	if _, err := db.Exec(partitionSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize partition schema for %s: %w", userID, err)
	}

	s.partitions[userID] = db
	return db, nil
}

// Close closes all open partitions.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for userID, db := range s.partitions {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close partition for %s: %w", userID, err)
		}
		delete(s.partitions, userID)
	}
	return firstErr
}

// Health pings every open partition.
func (s *Store) Health() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, db := range s.partitions {
		if err := db.Ping(); err != nil {
			return fmt.Errorf("partition for %s unhealthy: %w", userID, err)
		}
	}
	return nil
}

// validateUserID restricts user ids to a filename-safe alphabet so a
// caller-supplied id can never escape the store directory.
func validateUserID(userID string) error {
	if userID == "" {
		return fmt.Errorf("user id must not be empty")
	}
	if len(userID) > 64 {
		return fmt.Errorf("user id too long: %d characters", len(userID))
	}
	if userID == "." || userID == ".." {
		return fmt.Errorf("user id must not be a path component")
	}
	for _, r := range userID {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return fmt.Errorf("user id contains invalid character %q", r)
		}
	}
	return nil
}
