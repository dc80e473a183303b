package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite"
)

func journalPath() (string, error) {
	path, err := xdg.DataFile(filepath.Join(appDirName, "journal.db"))
	if err != nil {
		return "", fmt.Errorf("resolve journal path: %w", err)
	}
	return path, nil
}

func openJournalDB(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS raise_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		raised_at TEXT NOT NULL,
		action TEXT NOT NULL,
		source TEXT NOT NULL,
		x INTEGER,
		y INTEGER,
		instance TEXT
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	return db, nil
}

type JournalEntry struct {
	ID       int64     `json:"id"`
	At       time.Time `json:"at"`
	Action   string    `json:"action"`
	Source   string    `json:"source"`
	X        int       `json:"x"`
	Y        int       `json:"y"`
	Instance string    `json:"instance"`
}

// RaiseJournal keeps the most recent executed window actions.
type RaiseJournal struct {
	db       *sql.DB
	instance string
	limit    int
	mu       sync.Mutex
}

func NewRaiseJournal(db *sql.DB, instance string, limit int) *RaiseJournal {
	return &RaiseJournal{db: db, instance: instance, limit: limit}
}

func (j *RaiseJournal) Record(ev RaiseEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(
		`INSERT INTO raise_events (raised_at, action, source, x, y, instance) VALUES (?, ?, ?, ?, ?, ?)`,
		ev.At.UTC().Format(time.RFC3339Nano), ev.Action, ev.Source, ev.X, ev.Y, j.instance,
	)
	if err != nil {
		return fmt.Errorf("insert raise event: %w", err)
	}

	if j.limit > 0 {
		_, err = j.db.Exec(
			`DELETE FROM raise_events WHERE id NOT IN (SELECT id FROM raise_events ORDER BY id DESC LIMIT ?)`,
			j.limit,
		)
		if err != nil {
			return fmt.Errorf("prune raise events: %w", err)
		}
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *RaiseJournal) Recent(limit int) ([]JournalEntry, error) {
	rows, err := j.db.Query(
		`SELECT id, raised_at, action, source, x, y, instance FROM raise_events ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query raise events: %w", err)
	}
	defer rows.Close()

	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		var at string
		var instance sql.NullString
		if err := rows.Scan(&e.ID, &at, &e.Action, &e.Source, &e.X, &e.Y, &instance); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.At, _ = time.Parse(time.RFC3339Nano, at)
		e.Instance = instance.String
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (j *RaiseJournal) Count() (int, error) {
	var n int
	if err := j.db.QueryRow(`SELECT COUNT(*) FROM raise_events`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count raise events: %w", err)
	}
	return n, nil
}
