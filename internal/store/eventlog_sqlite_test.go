package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"storyline-cli/internal/model"
)

func TestRecorder_BuffersCommitsUntilDrained(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	var rec Recorder
	unsubscribe := db.Subscribe(rec.Observe)

	b, err := db.AddNode(nil, model.NodeBook, "Book")
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	title := "Book"
	if _, err := db.UpdateNode(b.ID, NodePatch{Title: &title}); err != nil {
		t.Fatalf("UpdateNode: %v", err)
	}
	if rec.Pending() != 1 {
		t.Fatalf("a no-op update must not commit; pending=%d", rec.Pending())
	}

	unsubscribe()
	if _, err := db.AddNode(nil, model.NodeBook, "Other"); err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	got := rec.Drain()
	if len(got) != 1 || got[0].Kind != "node.add" || got[0].Seq != 1 {
		t.Fatalf("unexpected commits: %+v", got)
	}
	if rec.Pending() != 0 {
		t.Fatalf("expected empty buffer after Drain")
	}
}

func TestPersist_RecordsEventsWithStoreID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := Store{Dir: t.TempDir()}
	db := newTestDB(t)
	var rec Recorder
	db.Subscribe(rec.Observe)
	b, _ := db.AddNode(nil, model.NodeBook, "Book")
	if _, err := db.DeleteNode(b.ID); err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}

	if err := s.Persist(ctx, db, rec.Drain()); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	events, err := s.ListEvents(ctx, 0)
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 || events[0].Kind != "node.delete" || events[1].Kind != "node.add" {
		t.Fatalf("unexpected events: %+v", events)
	}
	if _, err := uuid.Parse(events[0].StoreID); err != nil || events[0].StoreID != events[1].StoreID {
		t.Fatalf("expected one uuid store id; got %q and %q", events[0].StoreID, events[1].StoreID)
	}
}

func TestNewNodeID_IsUUID(t *testing.T) {
	t.Parallel()
	a, b := newNodeID(), newNodeID()
	if _, err := uuid.Parse(a); err != nil || a == b {
		t.Fatalf("unexpected ids %q %q", a, b)
	}
}
