package store

import (
	"context"
	"encoding/json"
)

const tuiStateKey = "tui_state"

// TUIState holds what the terminal view adds on top of the persisted UIState (collapsed ids and
// the selected scene). Missing or unreadable state loads as the zero value.
type TUIState struct {
	Version int `json:"version"`

	// CursorID is the row under the cursor when the TUI exited.
	CursorID string `json:"cursorId,omitempty"`

	// ShowDetail toggles the glamour detail pane.
	ShowDetail bool `json:"showDetail,omitempty"`
}

func defaultTUIState() *TUIState { return &TUIState{Version: 1} }

// LoadTUIState reads the view state from state_meta. A store that was never initialized loads
// the default without creating a database.
func (s Store) LoadTUIState(ctx context.Context) (*TUIState, error) {
	if !s.Exists() {
		return defaultTUIState(), nil
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	raw := readMeta(ctx, db, tuiStateKey)
	if raw == "" {
		return defaultTUIState(), nil
	}
	var st TUIState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return defaultTUIState(), nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return &st, nil
}

// SaveTUIState writes the view state outside the node transaction; it never touches nodes or
// events.
func (s Store) SaveTUIState(ctx context.Context, st *TUIState) error {
	if st == nil {
		return nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, tuiStateKey, string(b))
	return err
}
