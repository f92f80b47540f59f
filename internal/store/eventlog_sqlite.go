package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"storyline-cli/internal/model"

	_ "modernc.org/sqlite"
)

// EventRecord is one row of the commit log.
type EventRecord struct {
	ID      int64     `json:"id"`
	StoreID string    `json:"storeId"`
	Seq     uint64    `json:"seq"`
	Kind    string    `json:"kind"`
	At      time.Time `json:"at"`
	Changed []string  `json:"changed,omitempty"`
	Removed []string  `json:"removed,omitempty"`
}

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS state_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY,
			parent_id TEXT NOT NULL,
			type TEXT NOT NULL,
			ord INTEGER NOT NULL,
			title TEXT NOT NULL,
			include_in_full INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id, ord);`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_type ON nodes(type);`,
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			store_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			at_unixms INTEGER NOT NULL,
			changed_json TEXT NOT NULL,
			removed_json TEXT NOT NULL,
			payload_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_at ON events(at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	_, err := ensureMetaUUID(ctx, db, "store_id")
	return err
}

func ensureMetaUUID(ctx context.Context, db *sql.DB, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("empty meta key")
	}
	var v string
	err := db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, key).Scan(&v)
	if err == nil && strings.TrimSpace(v) != "" {
		return v, nil
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}
	id := uuid.NewString()
	if _, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, key, id); err != nil {
		return "", err
	}
	return id, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func appendCommits(ctx context.Context, tx execer, commits []model.Commit) error {
	if len(commits) == 0 {
		return nil
	}
	var storeID string
	if err := tx.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, "store_id").Scan(&storeID); err != nil {
		return err
	}
	for _, c := range commits {
		changedIDs := make([]string, 0, len(c.Changed))
		for _, n := range c.Changed {
			changedIDs = append(changedIDs, n.ID)
		}
		removed := c.Removed
		if removed == nil {
			removed = []string{}
		}
		changedJSON, _ := json.Marshal(changedIDs)
		removedJSON, _ := json.Marshal(removed)
		payload, err := json.Marshal(c)
		if err != nil {
			return err
		}
		at := c.At
		if at.IsZero() {
			at = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO events(store_id, seq, kind, at_unixms, changed_json, removed_json, payload_json) VALUES(?, ?, ?, ?, ?, ?, ?)`,
			storeID, int64(c.Seq), c.Kind, at.UTC().UnixMilli(), string(changedJSON), string(removedJSON), string(payload)); err != nil {
			return err
		}
	}
	return nil
}

// AppendCommits records commits in the event log without touching the node rows.
func (s Store) AppendCommits(ctx context.Context, commits []model.Commit) error {
	if len(commits) == 0 {
		return nil
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := appendCommits(ctx, tx, commits); err != nil {
		return err
	}
	return tx.Commit()
}

// ListEvents returns the most recent events, newest first. limit <= 0 means all.
func (s Store) ListEvents(ctx context.Context, limit int) ([]EventRecord, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	q := `SELECT id, store_id, seq, kind, at_unixms, changed_json, removed_json FROM events ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []EventRecord{}
	for rows.Next() {
		var (
			r           EventRecord
			seq         int64
			atMs        int64
			changedJSON string
			removedJSON string
		)
		if err := rows.Scan(&r.ID, &r.StoreID, &seq, &r.Kind, &atMs, &changedJSON, &removedJSON); err != nil {
			return nil, err
		}
		r.Seq = uint64(seq)
		r.At = time.UnixMilli(atMs).UTC()
		if err := json.Unmarshal([]byte(changedJSON), &r.Changed); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(removedJSON), &r.Removed); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Recorder buffers commits from a DB until the host persists them.
type Recorder struct {
	commits []model.Commit
}

// Observe is an Observer; attach it with db.Subscribe(rec.Observe).
func (r *Recorder) Observe(c model.Commit) {
	r.commits = append(r.commits, c)
}

func (r *Recorder) Pending() int { return len(r.commits) }

// Drain returns the buffered commits and resets the buffer.
func (r *Recorder) Drain() []model.Commit {
	out := r.commits
	r.commits = nil
	return out
}
