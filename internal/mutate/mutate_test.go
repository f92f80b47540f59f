package mutate

import (
	"errors"
	"reflect"
	"testing"

	"storyline-cli/internal/dragdrop"
	"storyline-cli/internal/model"
	"storyline-cli/internal/store"
)

func strPtr(s string) *string { return &s }

func fixture(t *testing.T) *store.DB {
	t.Helper()
	db := store.NewDB()
	err := db.SetNodes([]model.Node{
		{ID: "B1", Type: model.NodeBook},
		{ID: "A1", Type: model.NodeArc, ParentID: strPtr("B1")},
		{ID: "C1", Type: model.NodeChapter, ParentID: strPtr("A1"), Order: 0, IncludeInFull: model.IncludeSummary},
		{ID: "C2", Type: model.NodeChapter, ParentID: strPtr("A1"), Order: 1, IncludeInFull: model.IncludeFull},
		{ID: "S1", Type: model.NodeScene, ParentID: strPtr("C2")},
		{ID: "A2", Type: model.NodeArc, ParentID: strPtr("B1"), Order: 1},
		{ID: "C3", Type: model.NodeChapter, ParentID: strPtr("A2"), IncludeInFull: model.IncludeNone},
	})
	if err != nil {
		t.Fatalf("SetNodes: %v", err)
	}
	return db
}

func TestNextIncludeMode_Cycles(t *testing.T) {
	got := []model.IncludeMode{}
	m := model.IncludeSummary
	for i := 0; i < 4; i++ {
		m = NextIncludeMode(m)
		got = append(got, m)
	}
	want := []model.IncludeMode{model.IncludeFull, model.IncludeNone, model.IncludeSummary, model.IncludeFull}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("cycle = %v; want %v", got, want)
	}
}

func TestCycleIncludeInFull_ChaptersOnly(t *testing.T) {
	db := fixture(t)

	res, err := CycleIncludeInFull(db, "C1")
	if err != nil {
		t.Fatalf("CycleIncludeInFull: %v", err)
	}
	if !res.Changed || res.Node.IncludeInFull != model.IncludeFull {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.EventPayload["from"] != "summary" || res.EventPayload["to"] != "full" {
		t.Fatalf("unexpected payload: %v", res.EventPayload)
	}

	var wt WrongTypeError
	if _, err := CycleIncludeInFull(db, "S1"); !errors.As(err, &wt) || wt.Got != model.NodeScene {
		t.Fatalf("expected WrongTypeError; got %v", err)
	}
	var nf store.NotFoundError
	if _, err := CycleIncludeInFull(db, "nope"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError; got %v", err)
	}
}

func TestSetIncludeInFull_NoChange(t *testing.T) {
	db := fixture(t)
	seq := db.Seq()
	res, err := SetIncludeInFull(db, "C2", model.IncludeFull)
	if err != nil {
		t.Fatalf("SetIncludeInFull: %v", err)
	}
	if res.Changed || db.Seq() != seq {
		t.Fatalf("expected no change")
	}
}

func TestSetIncludeForPrecedingChapters(t *testing.T) {
	db := fixture(t)
	var commits int
	db.Subscribe(func(model.Commit) { commits++ })

	res, err := SetIncludeForPrecedingChapters(db, "C3", model.IncludeNone)
	if err != nil {
		t.Fatalf("SetIncludeForPrecedingChapters: %v", err)
	}
	if !res.Changed || !reflect.DeepEqual(res.ChapterIDs, []string{"C1", "C2"}) {
		t.Fatalf("unexpected result: %+v", res)
	}
	if commits != 1 {
		t.Fatalf("expected a single commit; got %d", commits)
	}
	for _, id := range []string{"C1", "C2"} {
		if n, _ := db.Node(id); n.IncludeInFull != model.IncludeNone {
			t.Fatalf("%s not updated", id)
		}
	}
	if n, _ := db.Node("C3"); n.IncludeInFull != model.IncludeNone {
		t.Fatalf("target chapter must not be touched")
	}

	again, err := SetIncludeForPrecedingChapters(db, "C3", model.IncludeNone)
	if err != nil || again.Changed {
		t.Fatalf("expected idempotent second call; got %+v err=%v", again, err)
	}
	if _, err := SetIncludeForPrecedingChapters(db, "C3", model.IncludeMode(9)); err == nil {
		t.Fatalf("expected invalid mode error")
	}
}

func TestSetChapterStatus(t *testing.T) {
	db := fixture(t)
	res, err := SetChapterStatus(db, "C1", model.StatusDraft)
	if err != nil {
		t.Fatalf("SetChapterStatus: %v", err)
	}
	if !res.Changed || res.Node.Status != model.StatusDraft {
		t.Fatalf("unexpected result: %+v", res)
	}
	if _, err := SetChapterStatus(db, "A1", model.StatusDone); err == nil {
		t.Fatalf("expected arcs to be rejected")
	}
	if _, err := SetChapterStatus(db, "C1", model.ChapterStatus("bogus")); err == nil {
		t.Fatalf("expected invalid status error")
	}
	if NextStatus(model.StatusNone) != model.StatusDraft || NextStatus(model.StatusDone) != model.StatusNone {
		t.Fatalf("unexpected status cycle")
	}
}

func TestUpdateSceneMeta(t *testing.T) {
	db := fixture(t)
	goal := "  steal the ledger "
	first := model.PerspectiveFirst
	st := int64(-30)
	res, err := UpdateSceneMeta(db, "S1", ScenePatch{Goal: &goal, Perspective: &first, StoryTime: &st, ActiveCharacterIDs: []string{"ava"}})
	if err != nil {
		t.Fatalf("UpdateSceneMeta: %v", err)
	}
	if !res.Changed || res.Node.Scene.Goal != "steal the ledger" || *res.Node.Scene.StoryTime != -30 {
		t.Fatalf("unexpected scene: %+v", res.Node.Scene)
	}

	res, err = UpdateSceneMeta(db, "S1", ScenePatch{ClearStoryTime: true})
	if err != nil {
		t.Fatalf("UpdateSceneMeta clear: %v", err)
	}
	if res.Node.Scene.StoryTime != nil || res.Node.Scene.Goal != "steal the ledger" {
		t.Fatalf("expected only story time cleared: %+v", res.Node.Scene)
	}

	res, err = UpdateSceneMeta(db, "S1", ScenePatch{Goal: &goal})
	if err != nil || res.Changed {
		t.Fatalf("expected no change; got %+v err=%v", res, err)
	}

	bad := model.Perspective("SECOND")
	if _, err := UpdateSceneMeta(db, "S1", ScenePatch{Perspective: &bad}); !errors.Is(err, ErrInvalidPerspective) {
		t.Fatalf("expected ErrInvalidPerspective; got %v", err)
	}
	if _, err := UpdateSceneMeta(db, "C1", ScenePatch{Goal: &goal}); err == nil {
		t.Fatalf("expected chapters to be rejected")
	}
}

func TestMoveRelative(t *testing.T) {
	db := fixture(t)

	res, err := MoveRelative(db, []string{"C3"}, "C1", model.DropBefore)
	if err != nil {
		t.Fatalf("MoveRelative: %v", err)
	}
	if res.ParentID == nil || *res.ParentID != "A1" || res.Index != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
	var ids []string
	for _, n := range db.ChildrenOf("A1") {
		ids = append(ids, n.ID)
	}
	if !reflect.DeepEqual(ids, []string{"C3", "C1", "C2"}) {
		t.Fatalf("unexpected order: %v", ids)
	}

	if _, err := MoveRelative(db, []string{"S1"}, "C1", model.DropAfter); !errors.Is(err, dragdrop.ErrNoDropTarget) {
		t.Fatalf("expected ErrNoDropTarget; got %v", err)
	}
	if _, err := MoveRelative(db, []string{"S1", "C1"}, "C2", model.DropInside); err == nil {
		t.Fatalf("expected mixed batch to be rejected")
	}
	if _, err := MoveRelative(db, []string{"S1"}, "C1", model.DropInside); err != nil {
		t.Fatalf("MoveRelative inside: %v", err)
	}
	if n, _ := db.Node("S1"); n.Parent() != "C1" {
		t.Fatalf("expected S1 under C1; got %q", n.Parent())
	}
}
