package store

import (
	"context"
	"reflect"
	"testing"

	"storyline-cli/internal/model"
)

func TestTUIState_SaveLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	st0, err := s.LoadTUIState(ctx)
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if st0 == nil || st0.Version != 1 {
		t.Fatalf("expected default Version=1; got %#v", st0)
	}
	if s.Exists() {
		t.Fatalf("loading must not create a database")
	}

	want := &TUIState{Version: 1, CursorID: "chapter-1", ShowDetail: true}
	if err := s.SaveTUIState(ctx, want); err != nil {
		t.Fatalf("SaveTUIState: %v", err)
	}
	got, err := s.LoadTUIState(ctx)
	if err != nil {
		t.Fatalf("LoadTUIState (after save): %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("roundtrip mismatch:\nwant: %#v\ngot:  %#v", want, got)
	}
}

func TestTUIState_SurvivesNodeSaves(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := Store{Dir: t.TempDir()}
	if err := s.SaveTUIState(ctx, &TUIState{CursorID: "B1"}); err != nil {
		t.Fatalf("SaveTUIState: %v", err)
	}
	db := NewDB()
	if err := db.SetNodes([]model.Node{{ID: "B1", Type: model.NodeBook}}); err != nil {
		t.Fatalf("SetNodes: %v", err)
	}
	if err := s.Save(ctx, db); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.LoadTUIState(ctx)
	if err != nil || got.CursorID != "B1" {
		t.Fatalf("expected cursor to survive; got %#v err=%v", got, err)
	}
}

func TestTUIState_CorruptValueIsIgnored(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := Store{Dir: t.TempDir()}
	db, err := s.openSQLite(ctx)
	if err != nil {
		t.Fatalf("openSQLite: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, tuiStateKey, "{not json"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	_ = db.Close()

	st, err := s.LoadTUIState(ctx)
	if err != nil {
		t.Fatalf("LoadTUIState: %v", err)
	}
	if st.CursorID != "" || st.Version != 1 {
		t.Fatalf("expected default state; got %#v", st)
	}
}
