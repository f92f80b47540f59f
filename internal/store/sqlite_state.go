package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"storyline-cli/internal/model"
)

const stateVersion = 1

// LoadSQLite loads the node collection and view state from <dir>/storyline.sqlite.
// A missing database yields an empty DB.
func (s Store) LoadSQLite(ctx context.Context) (*DB, error) {
	sqldb, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer sqldb.Close()

	nodes, err := readJSONRows[model.Node](ctx, sqldb, `SELECT json FROM nodes ORDER BY parent_id, ord, id`)
	if err != nil {
		return nil, err
	}
	out := NewDB()
	if err := out.SetNodes(nodes); err != nil {
		return nil, err
	}

	if v := readMeta(ctx, sqldb, "ui_state"); v != "" {
		var ui UIState
		// Best-effort; a corrupt blob just resets the view.
		if err := json.Unmarshal([]byte(v), &ui); err == nil {
			out.RestoreUIState(ui)
		}
	}
	if v := readMeta(ctx, sqldb, "seq"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			out.seq = n
		}
	}
	return out, nil
}

// SaveSQLite replaces every node row and appends commits inside one transaction.
func (s Store) SaveSQLite(ctx context.Context, st *DB, commits []model.Commit) error {
	if st == nil {
		return errors.New("nil db")
	}
	sqldb, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	tx, err := sqldb.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	uiJSON, _ := json.Marshal(st.UIState())
	meta := map[string]string{
		"version":  strconv.Itoa(stateVersion),
		"seq":      strconv.FormatUint(st.Seq(), 10),
		"ui_state": string(uiJSON),
	}
	for _, k := range []string{"version", "seq", "ui_state"} {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, k, meta[k]); err != nil {
			return err
		}
	}

	// Replace-all: the in-memory collection is the unit of truth.
	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes`); err != nil {
		return err
	}
	nowMs := time.Now().UTC().UnixMilli()
	for _, n := range st.Nodes() {
		raw, err := json.Marshal(n)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO nodes(id, parent_id, type, ord, title, include_in_full, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
			n.ID, n.Parent(), string(n.Type), n.Order, n.Title, int(n.IncludeInFull), string(raw), nowMs); err != nil {
			return err
		}
	}

	if err := appendCommits(ctx, tx, commits); err != nil {
		return err
	}
	return tx.Commit()
}

func readMeta(ctx context.Context, db *sql.DB, k string) string {
	var v string
	_ = db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, k).Scan(&v)
	return strings.TrimSpace(v)
}

func readJSONRows[T any](ctx context.Context, db *sql.DB, query string) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var js string
		if err := rows.Scan(&js); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
