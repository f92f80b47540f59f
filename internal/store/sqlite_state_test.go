package store

import (
	"context"
	"reflect"
	"testing"

	"storyline-cli/internal/model"
)

func TestSQLiteState_PersistLoadRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	db := scenarioDB(t)
	rec := &Recorder{}
	db.Subscribe(rec.Observe)

	goal := "find the map"
	st := int64(120)
	if _, err := db.UpdateNode("S1", NodePatch{Scene: &model.SceneMeta{Goal: goal, StoryTime: &st, ActiveCharacterIDs: []string{"c1"}}}); err != nil {
		t.Fatalf("UpdateNode: %v", err)
	}
	if err := db.MoveNode("C2", strPtr("A1"), 0); err != nil {
		t.Fatalf("MoveNode: %v", err)
	}
	db.SelectNode("S1")
	db.SetExpanded("A2", false)

	if rec.Pending() != 2 {
		t.Fatalf("expected 2 pending commits; got %d", rec.Pending())
	}
	if err := s.Persist(ctx, db, rec.Drain()); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if rec.Pending() != 0 {
		t.Fatalf("expected Drain to reset the buffer")
	}
	if !s.Exists() {
		t.Fatalf("expected sqlite file to exist")
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got.Nodes(), db.Nodes()) {
		t.Fatalf("nodes mismatch:\nwant: %+v\ngot:  %+v", db.Nodes(), got.Nodes())
	}
	if got.SelectedID() != "S1" || got.IsExpanded("A2") || !got.IsExpanded("A1") {
		t.Fatalf("ui state not restored: %+v", got.UIState())
	}
	if got.Seq() != db.Seq() {
		t.Fatalf("seq = %d; want %d", got.Seq(), db.Seq())
	}

	events, err := s.ListEvents(ctx, 0)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 || events[0].Kind != "node.move" || events[1].Kind != "node.update" {
		t.Fatalf("unexpected events: %+v", events)
	}
	if !reflect.DeepEqual(events[1].Changed, []string{"S1"}) || events[0].StoreID == "" {
		t.Fatalf("unexpected event payload: %+v", events[1])
	}
}

func TestSQLiteState_SaveReplacesRows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	db := scenarioDB(t)
	if err := s.Save(ctx, db); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := db.DeleteNode("B2"); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}
	if err := s.Save(ctx, db); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Len() != 5 {
		t.Fatalf("expected deleted rows to be gone; got %d nodes", got.Len())
	}
	if _, ok := got.Node("C3"); ok {
		t.Fatalf("C3 should have been removed with B2")
	}
}

func TestSQLiteState_EmptyStoreLoads(t *testing.T) {
	t.Parallel()

	db, err := Store{Dir: t.TempDir()}.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if db.Len() != 0 || len(db.Tree()) != 0 {
		t.Fatalf("expected empty db")
	}
}

func TestAppendCommits_LimitNewestFirst(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := Store{Dir: t.TempDir()}
	commits := []model.Commit{
		{Seq: 1, Kind: "node.add", Changed: []model.Node{{ID: "a", Type: model.NodeBook}}},
		{Seq: 2, Kind: "node.delete", Removed: []string{"a"}},
	}
	if err := s.AppendCommits(ctx, commits); err != nil {
		t.Fatalf("AppendCommits: %v", err)
	}
	events, err := s.ListEvents(ctx, 1)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 1 || events[0].Seq != 2 || !reflect.DeepEqual(events[0].Removed, []string{"a"}) {
		t.Fatalf("unexpected events: %+v", events)
	}
}
