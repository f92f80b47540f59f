package store

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"storyline-cli/internal/hierarchy"
	"storyline-cli/internal/model"
	"storyline-cli/internal/treeorder"
)

func strPtr(s string) *string { return &s }

// newTestDB returns an empty DB with deterministic ids (n1, n2, ...) and a ticking clock.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db := NewDB()
	next := 0
	db.newID = func() string {
		next++
		return fmt.Sprintf("n%d", next)
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	db.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})
	return db
}

// scenarioDB is B1 → A1 → {C1, C2}, with S1 under C1, plus a second book B2 → A2 → C3.
func scenarioDB(t *testing.T) *DB {
	t.Helper()
	db := newTestDB(t)
	err := db.SetNodes([]model.Node{
		{ID: "B1", Type: model.NodeBook, Order: 0, Title: "Book one"},
		{ID: "A1", Type: model.NodeArc, ParentID: strPtr("B1"), Order: 0, Title: "Arc one"},
		{ID: "C1", Type: model.NodeChapter, ParentID: strPtr("A1"), Order: 0, Title: "Chapter one"},
		{ID: "C2", Type: model.NodeChapter, ParentID: strPtr("A1"), Order: 1, Title: "Chapter two"},
		{ID: "S1", Type: model.NodeScene, ParentID: strPtr("C1"), Order: 0, Title: "Scene one"},
		{ID: "B2", Type: model.NodeBook, Order: 1, Title: "Book two"},
		{ID: "A2", Type: model.NodeArc, ParentID: strPtr("B2"), Order: 0, Title: "Arc two"},
		{ID: "C3", Type: model.NodeChapter, ParentID: strPtr("A2"), Order: 0, Title: "Chapter three"},
	})
	if err != nil {
		t.Fatalf("SetNodes: %v", err)
	}
	return db
}

func childIDs(db *DB, id string) []string {
	var out []string
	for _, n := range db.ChildrenOf(id) {
		out = append(out, n.ID)
	}
	return out
}

// assertInvariants checks hierarchy conformance, acyclicity and sibling order totality.
func assertInvariants(t *testing.T, db *DB) {
	t.Helper()
	if rep := db.Check(); len(rep.Issues) > 0 {
		t.Fatalf("invariant issues: %+v", rep.Issues)
	}
	for _, n := range db.Nodes() {
		if hierarchy.IsAncestor(db, n.ID, n.ID) {
			t.Fatalf("%s is its own ancestor", n.ID)
		}
	}
}

func TestSetNodes_RejectsDuplicates(t *testing.T) {
	t.Parallel()

	db := NewDB()
	err := db.SetNodes([]model.Node{
		{ID: "x", Type: model.NodeBook},
		{ID: "x", Type: model.NodeBook},
	})
	if err == nil {
		t.Fatalf("expected duplicate id error")
	}
	if err := db.SetNodes([]model.Node{{ID: "y", Type: "volume"}}); err == nil {
		t.Fatalf("expected invalid type error")
	}
}

func TestAddNode_AppendsAsLastChild(t *testing.T) {
	t.Parallel()

	db := scenarioDB(t)
	db.SetExpanded("A1", false)

	n, err := db.AddNode(strPtr("A1"), model.NodeChapter, "")
	if err != nil {
		t.Fatalf("AddNode: %v", err)
	}
	if n.Title != "New chapter" {
		t.Fatalf("expected default title; got %q", n.Title)
	}
	if n.Order != 2 || n.IncludeInFull != model.IncludeSummary {
		t.Fatalf("unexpected defaults: %+v", n)
	}
	if got := childIDs(db, "A1"); !reflect.DeepEqual(got, []string{"C1", "C2", n.ID}) {
		t.Fatalf("unexpected children: %v", got)
	}
	if !db.IsExpanded("A1") {
		t.Fatalf("expected parent to be expanded after add")
	}

	root, err := db.AddNode(nil, model.NodeBook, "Book three")
	if err != nil {
		t.Fatalf("AddNode root: %v", err)
	}
	if root.ParentID != nil || root.Order != 2 {
		t.Fatalf("expected last root; got %+v", root)
	}
	assertInvariants(t, db)
}

func TestAddNode_RejectsHierarchyMismatch(t *testing.T) {
	t.Parallel()

	db := scenarioDB(t)
	before := db.Seq()

	_, err := db.AddNode(nil, model.NodeArc, "Loose arc")
	var hErr InvalidHierarchyError
	if !errors.As(err, &hErr) || hErr.Child != model.NodeArc || hErr.Parent != "" {
		t.Fatalf("expected InvalidHierarchyError at root; got %v", err)
	}

	_, err = db.AddNode(strPtr("C1"), model.NodeChapter, "")
	if !errors.As(err, &hErr) || hErr.Parent != model.NodeChapter {
		t.Fatalf("expected InvalidHierarchyError under chapter; got %v", err)
	}

	_, err = db.AddNode(strPtr("missing"), model.NodeScene, "")
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.ID != "missing" {
		t.Fatalf("expected NotFoundError; got %v", err)
	}

	if db.Seq() != before || db.Len() != 8 {
		t.Fatalf("failed adds must not change the collection")
	}
}

func TestInsertNodeBefore_ShiftsLaterSiblings(t *testing.T) {
	t.Parallel()

	db := scenarioDB(t)
	n, err := db.InsertNodeBefore("C2", model.NodeChapter, "Interlude")
	if err != nil {
		t.Fatalf("InsertNodeBefore: %v", err)
	}
	if got := childIDs(db, "A1"); !reflect.DeepEqual(got, []string{"C1", n.ID, "C2"}) {
		t.Fatalf("unexpected order: %v", got)
	}
	c1, _ := db.Node("C1")
	if c1.Order != 0 {
		t.Fatalf("earlier sibling must keep its order; got %d", c1.Order)
	}
	assertInvariants(t, db)

	if _, err := db.InsertNodeBefore("C1", model.NodeScene, ""); err == nil {
		t.Fatalf("expected hierarchy error inserting a scene next to a chapter")
	}
	if _, err := db.InsertNodeBefore("nope", model.NodeChapter, ""); err == nil {
		t.Fatalf("expected not found")
	}
}

func TestInsertNodeBefore_ExpandsCollapsedParent(t *testing.T) {
	t.Parallel()

	db := scenarioDB(t)
	db.SetExpanded("A1", false)
	n, err := db.InsertNodeBefore("C2", model.NodeChapter, "Interlude")
	if err != nil {
		t.Fatalf("InsertNodeBefore: %v", err)
	}
	if !db.IsExpanded("A1") {
		t.Fatalf("parent should be expanded so the new node is visible")
	}
	var visible bool
	for _, r := range treeorder.Flatten(db.Tree(), true) {
		if r.ID == n.ID {
			visible = true
		}
	}
	if !visible {
		t.Fatalf("inserted node %s not in the visible rows", n.ID)
	}
}

func TestInsertNodeBefore_FirstRoot(t *testing.T) {
	t.Parallel()

	db := scenarioDB(t)
	n, err := db.InsertNodeBefore("B1", model.NodeBook, "Prequel")
	if err != nil {
		t.Fatalf("InsertNodeBefore: %v", err)
	}
	if got := childIDs(db, ""); !reflect.DeepEqual(got, []string{n.ID, "B1", "B2"}) {
		t.Fatalf("unexpected roots: %v", got)
	}
	assertInvariants(t, db)
}

func TestUpdateNode_MergesPayload(t *testing.T) {
	t.Parallel()

	db := scenarioDB(t)
	title := "Renamed"
	status := model.StatusReview
	full := model.IncludeFull
	n, err := db.UpdateNode("C1", NodePatch{Title: &title, Status: &status, IncludeInFull: &full})
	if err != nil {
		t.Fatalf("UpdateNode: %v", err)
	}
	if n.Title != "Renamed" || n.Status != model.StatusReview || n.IncludeInFull != model.IncludeFull {
		t.Fatalf("patch not applied: %+v", n)
	}
	if n.ParentID == nil || *n.ParentID != "A1" || n.Order != 0 {
		t.Fatalf("structural fields must not change: %+v", n)
	}

	seq := db.Seq()
	if _, err := db.UpdateNode("C1", NodePatch{Title: &title}); err != nil {
		t.Fatalf("UpdateNode no-op: %v", err)
	}
	if db.Seq() != seq {
		t.Fatalf("no-op update must not commit")
	}
}

func TestUpdateNode_RejectsBadPayload(t *testing.T) {
	t.Parallel()

	db := scenarioDB(t)
	var pErr InvalidPayloadError
	if _, err := db.UpdateNode("C1", NodePatch{Scene: &model.SceneMeta{Goal: "x"}}); !errors.As(err, &pErr) {
		t.Fatalf("expected scene metadata on a chapter to fail; got %v", err)
	}
	bad := model.IncludeMode(7)
	if _, err := db.UpdateNode("C1", NodePatch{IncludeInFull: &bad}); !errors.As(err, &pErr) {
		t.Fatalf("expected invalid include to fail; got %v", err)
	}
	blank := "  "
	if _, err := db.UpdateNode("C1", NodePatch{Title: &blank}); !errors.As(err, &pErr) {
		t.Fatalf("expected blank title to fail; got %v", err)
	}

	st := int64(-90)
	n, err := db.UpdateNode("S1", NodePatch{Scene: &model.SceneMeta{Goal: "escape", StoryTime: &st, Perspective: model.PerspectiveFirst}})
	if err != nil {
		t.Fatalf("UpdateNode scene: %v", err)
	}
	if n.Scene == nil || n.Scene.Goal != "escape" || *n.Scene.StoryTime != -90 {
		t.Fatalf("scene meta not stored: %+v", n.Scene)
	}
	st = 5
	again, _ := db.Node("S1")
	if *again.Scene.StoryTime != -90 {
		t.Fatalf("store must not alias caller memory")
	}
}

func TestUpdateNodes_AllOrNothing(t *testing.T) {
	t.Parallel()

	db := scenarioDB(t)
	full := model.IncludeFull
	if err := db.UpdateNodes([]string{"C1", "missing"}, NodePatch{IncludeInFull: &full}); err == nil {
		t.Fatalf("expected not found")
	}
	if c1, _ := db.Node("C1"); c1.IncludeInFull == model.IncludeFull {
		t.Fatalf("failed batch must not be half applied")
	}

	var commits []model.Commit
	db.Subscribe(func(c model.Commit) { commits = append(commits, c) })
	if err := db.UpdateNodes([]string{"C1", "C2", "C1"}, NodePatch{IncludeInFull: &full}); err != nil {
		t.Fatalf("UpdateNodes: %v", err)
	}
	if len(commits) != 1 || len(commits[0].Changed) != 2 {
		t.Fatalf("expected one commit with two nodes; got %+v", commits)
	}
}

func TestDeleteNode_Cascades(t *testing.T) {
	t.Parallel()

	db := scenarioDB(t)
	if !db.SelectNode("S1") {
		t.Fatalf("expected scene selection")
	}
	db.SetExpanded("C1", false)

	var commit model.Commit
	db.Subscribe(func(c model.Commit) { commit = c })

	removed, err := db.DeleteNode("A1")
	if err != nil {
		t.Fatalf("DeleteNode: %v", err)
	}
	if want := []string{"A1", "C1", "S1", "C2"}; !reflect.DeepEqual(removed, want) {
		t.Fatalf("removed = %v; want %v", removed, want)
	}
	if !reflect.DeepEqual(commit.Removed, removed) || commit.Kind != "node.delete" {
		t.Fatalf("unexpected commit: %+v", commit)
	}
	if db.Len() != 4 {
		t.Fatalf("expected 4 nodes left; got %d", db.Len())
	}
	if db.SelectedID() != "" {
		t.Fatalf("selection of a removed scene must be cleared")
	}
	if len(db.UIState().Collapsed) != 0 {
		t.Fatalf("expansion state of removed nodes must be cleared")
	}
	if _, err := db.DeleteNode("A1"); err == nil {
		t.Fatalf("expected not found on second delete")
	}
	assertInvariants(t, db)
}

func TestSelectNode_OnlyScenes(t *testing.T) {
	t.Parallel()

	db := scenarioDB(t)
	if db.SelectNode("C1") {
		t.Fatalf("chapter must not be selectable")
	}
	if db.SelectedID() != "" {
		t.Fatalf("selection changed by non-scene")
	}
	if db.IsExpanded("C1") {
		t.Fatalf("selecting a chapter with children should toggle it collapsed")
	}

	db.SetExpanded("A1", false)
	if !db.SelectNode("S1") || db.SelectedID() != "S1" {
		t.Fatalf("expected S1 selected")
	}
	if !db.IsExpanded("A1") || !db.IsExpanded("C1") {
		t.Fatalf("selecting a scene should reveal its ancestors")
	}

	if db.SelectNode("B1") || db.SelectedID() != "S1" {
		t.Fatalf("non-scene selection must leave the current selection alone")
	}
	if db.SelectNode("missing") {
		t.Fatalf("missing node must not be selected")
	}
}

func TestTree_ReflectsExpansion(t *testing.T) {
	t.Parallel()

	db := scenarioDB(t)
	db.ToggleExpanded("C1")
	tree := db.Tree()
	c1 := tree[0].Children[0].Children[0]
	if c1.ID != "C1" || c1.Expanded {
		t.Fatalf("expected collapsed C1; got %+v", c1)
	}
	db.ToggleExpanded("C1")
	if !db.Tree()[0].Children[0].Children[0].Expanded {
		t.Fatalf("expected C1 expanded again")
	}
}

func TestPrecedingChapters_UsesReadingOrder(t *testing.T) {
	t.Parallel()

	db := scenarioDB(t)
	got, err := db.PrecedingChapters("C3")
	if err != nil {
		t.Fatalf("PrecedingChapters: %v", err)
	}
	var ids []string
	for _, n := range got {
		ids = append(ids, n.ID)
	}
	if !reflect.DeepEqual(ids, []string{"C1", "C2"}) {
		t.Fatalf("unexpected chapters: %v", ids)
	}
	first, _ := db.PrecedingChapters("C1")
	if len(first) != 0 {
		t.Fatalf("nothing precedes the first chapter")
	}
	if _, err := db.PrecedingChapters("missing"); err == nil {
		t.Fatalf("expected not found")
	}
}

func TestCheck_ReportsCorruptData(t *testing.T) {
	t.Parallel()

	db := NewDB()
	err := db.SetNodes([]model.Node{
		{ID: "A", Type: model.NodeArc},
		{ID: "C", Type: model.NodeChapter, ParentID: strPtr("gone")},
		{ID: "x", Type: model.NodeBook, ParentID: strPtr("y")},
		{ID: "y", Type: model.NodeBook, ParentID: strPtr("x")},
		{ID: "B", Type: model.NodeBook},
		{ID: "B2", Type: model.NodeBook},
	})
	if err != nil {
		t.Fatalf("SetNodes: %v", err)
	}
	rep := db.Check()
	if !rep.HasErrors() {
		t.Fatalf("expected errors")
	}
	codes := map[string]int{}
	for _, it := range rep.Issues {
		codes[it.Code]++
	}
	if codes["hierarchy_mismatch"] < 1 || codes["missing_parent"] != 1 || codes["cycle"] != 2 || codes["duplicate_order"] < 1 {
		t.Fatalf("unexpected issue codes: %v", codes)
	}
}
