// Package history provides SQLite persistence for recently selected terms
// and genes, so autocomplete can offer recents before the user types.
package history

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Kind distinguishes the two selection sinks.
type Kind string

const (
	KindTerm Kind = "term"
	KindGene Kind = "gene"
)

// Entry is one remembered selection.
type Entry struct {
	Kind     Kind
	ID       string // GO id or gene symbol
	Label    string // display string shown in the recents list
	LastUsed time.Time
	Uses     int
}

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates a Store at the given database path, creating the schema if
// needed. Uses WAL mode for file-based databases.
func Open(dbPath string) (*Store, error) {
	connStr := dbPath
	if dbPath == ":memory:" {
		// shared cache so all pooled connections see the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS selections (
		kind TEXT NOT NULL,
		id TEXT NOT NULL,
		label TEXT NOT NULL,
		last_used DATETIME NOT NULL,
		uses INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (kind, id)
	);

	CREATE INDEX IF NOT EXISTS idx_selections_recent ON selections(kind, last_used DESC);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Record upserts a selection: new entries start at one use, repeats bump
// the use count and refresh the timestamp.
func (s *Store) Record(kind Kind, id, label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		return fmt.Errorf("record selection: empty id")
	}

	_, err := s.db.Exec(`
		INSERT INTO selections (kind, id, label, last_used, uses)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(kind, id) DO UPDATE SET
			label = excluded.label,
			last_used = excluded.last_used,
			uses = uses + 1
	`, string(kind), id, label, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record selection: %w", err)
	}
	return nil
}

// Recent returns up to limit entries of the given kind, most recent first.
func (s *Store) Recent(kind Kind, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(`
		SELECT kind, id, label, last_used, uses
		FROM selections
		WHERE kind = ?
		ORDER BY last_used DESC
		LIMIT ?
	`, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("query recents: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var k string
		if err := rows.Scan(&k, &e.ID, &e.Label, &e.LastUsed, &e.Uses); err != nil {
			return nil, fmt.Errorf("scan recent: %w", err)
		}
		e.Kind = Kind(k)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries not used within the retention window, returning
// the number removed.
func (s *Store) Prune(retention time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().UTC().Add(-retention)
	res, err := s.db.Exec(`DELETE FROM selections WHERE last_used < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune selections: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
