package hierarchy

import (
	"testing"

	"storyline-cli/internal/model"
)

type mapLookup map[string]model.Node

func (m mapLookup) Node(id string) (model.Node, bool) {
	n, ok := m[id]
	return n, ok
}

func (m mapLookup) Len() int { return len(m) }

func strPtr(s string) *string { return &s }

func fixture() mapLookup {
	return mapLookup{
		"B1": {ID: "B1", Type: model.NodeBook},
		"B2": {ID: "B2", Type: model.NodeBook, Order: 1},
		"A1": {ID: "A1", Type: model.NodeArc, ParentID: strPtr("B1")},
		"C1": {ID: "C1", Type: model.NodeChapter, ParentID: strPtr("A1")},
		"C2": {ID: "C2", Type: model.NodeChapter, ParentID: strPtr("A1"), Order: 1},
		"S1": {ID: "S1", Type: model.NodeScene, ParentID: strPtr("C1")},
	}
}

func TestExpectedParentType(t *testing.T) {
	cases := []struct {
		child  model.NodeType
		parent model.NodeType
		ok     bool
	}{
		{model.NodeBook, "", false},
		{model.NodeArc, model.NodeBook, true},
		{model.NodeChapter, model.NodeArc, true},
		{model.NodeScene, model.NodeChapter, true},
	}
	for _, tc := range cases {
		got, ok := ExpectedParentType(tc.child)
		if got != tc.parent || ok != tc.ok {
			t.Fatalf("ExpectedParentType(%s) = %q,%v; want %q,%v", tc.child, got, ok, tc.parent, tc.ok)
		}
		if ok {
			back, ok := ChildType(got)
			if !ok || back != tc.child {
				t.Fatalf("ChildType(%s) = %q,%v; want %q", got, back, ok, tc.child)
			}
		}
	}
	if _, ok := ChildType(model.NodeScene); ok {
		t.Fatalf("expected scenes to have no child type")
	}
}

func TestIsAncestor(t *testing.T) {
	nodes := fixture()
	if !IsAncestor(nodes, "B1", "S1") {
		t.Fatalf("expected B1 to be an ancestor of S1")
	}
	if !IsAncestor(nodes, "C1", "S1") {
		t.Fatalf("expected direct parent to count as ancestor")
	}
	if IsAncestor(nodes, "S1", "B1") {
		t.Fatalf("descendant is not an ancestor")
	}
	for id := range nodes {
		if IsAncestor(nodes, id, id) {
			t.Fatalf("node %s must not be its own ancestor", id)
		}
	}
}

func TestIsAncestor_TerminatesOnCorruptCycle(t *testing.T) {
	nodes := mapLookup{
		"x": {ID: "x", Type: model.NodeArc, ParentID: strPtr("y")},
		"y": {ID: "y", Type: model.NodeArc, ParentID: strPtr("x")},
	}
	if IsAncestor(nodes, "z", "x") {
		t.Fatalf("expected false for unrelated id")
	}
}

func TestCanNestInside(t *testing.T) {
	nodes := fixture()
	if CanNestInside(nodes, nodes["C1"], nodes["A1"]) {
		t.Fatalf("arc cannot nest inside a chapter")
	}
	if !CanNestInside(nodes, nodes["C2"], nodes["S1"]) {
		t.Fatalf("scene should nest inside another chapter")
	}
	if CanNestInside(nodes, nodes["A1"], nodes["A1"]) {
		t.Fatalf("node cannot nest inside itself")
	}
	if !CanNestInside(nodes, nodes["B2"], nodes["A1"]) {
		t.Fatalf("arc should nest inside another book")
	}
}

func TestCanBeSiblingOf(t *testing.T) {
	nodes := fixture()
	if !CanBeSiblingOf(nodes, nil, nodes["B2"]) {
		t.Fatalf("books belong at the root")
	}
	if CanBeSiblingOf(nodes, nil, nodes["A1"]) {
		t.Fatalf("arcs cannot be roots")
	}
	if !CanBeSiblingOf(nodes, strPtr("A1"), nodes["C2"]) {
		t.Fatalf("chapter should be a sibling under its arc")
	}
	if CanBeSiblingOf(nodes, strPtr("C1"), nodes["A1"]) {
		t.Fatalf("arc cannot live under a chapter")
	}
	if CanBeSiblingOf(nodes, strPtr("missing"), nodes["S1"]) {
		t.Fatalf("missing parent must fail")
	}
	if CanBeSiblingOf(nodes, strPtr("A1"), nodes["A1"]) {
		t.Fatalf("node cannot be a sibling under itself")
	}
}

func TestBatchPredicates(t *testing.T) {
	nodes := fixture()
	chapters := []model.Node{nodes["C1"], nodes["C2"]}
	if !CanAllBeSiblingsOf(nodes, strPtr("A1"), chapters) {
		t.Fatalf("expected both chapters to fit under A1")
	}
	mixed := []model.Node{nodes["C1"], nodes["S1"]}
	if CanAllBeSiblingsOf(nodes, strPtr("A1"), mixed) {
		t.Fatalf("a mixed batch must be rejected as a whole")
	}
	if CanNestAllInside(nodes, nodes["C2"], nil) {
		t.Fatalf("empty batch is never legal")
	}
	if Homogeneous(mixed) || !Homogeneous(chapters) {
		t.Fatalf("unexpected homogeneity result")
	}
}
