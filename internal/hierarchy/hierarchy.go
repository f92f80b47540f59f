// Package hierarchy holds the structural rules of the Book → Arc → Chapter → Scene tree.
//
// Every function here is a pure predicate over a read-only view of the node collection.
// The store and the drag session consult these before attempting any structural mutation.
package hierarchy

import "storyline-cli/internal/model"

// Lookup is the read-only view the rules need.
type Lookup interface {
	Node(id string) (model.Node, bool)
	Len() int
}

// ExpectedParentType returns the only type a node of type t may be nested under.
// ok is false for Book, which is always a root.
func ExpectedParentType(t model.NodeType) (parent model.NodeType, ok bool) {
	switch t {
	case model.NodeBook:
		return "", false
	case model.NodeArc:
		return model.NodeBook, true
	case model.NodeChapter:
		return model.NodeArc, true
	case model.NodeScene:
		return model.NodeChapter, true
	default:
		return "", false
	}
}

// ChildType is the inverse of ExpectedParentType. Scenes have no child type.
func ChildType(t model.NodeType) (child model.NodeType, ok bool) {
	switch t {
	case model.NodeBook:
		return model.NodeArc, true
	case model.NodeArc:
		return model.NodeChapter, true
	case model.NodeChapter:
		return model.NodeScene, true
	case model.NodeScene:
		return "", false
	default:
		return "", false
	}
}

// IsRootType reports whether t may live at the top level.
func IsRootType(t model.NodeType) bool {
	_, hasParent := ExpectedParentType(t)
	return t.Valid() && !hasParent
}

// ParentAccepts reports whether a node of type parent may directly contain a node of type child.
func ParentAccepts(parent, child model.NodeType) bool {
	want, ok := ExpectedParentType(child)
	return ok && want == parent
}

// IsAncestor reports whether walking nodeID's parent links reaches ancestorID.
// A node is not its own ancestor. The walk is bounded by the collection size so
// corrupt (already cyclic) data cannot loop forever.
func IsAncestor(nodes Lookup, ancestorID, nodeID string) bool {
	if nodes == nil || ancestorID == "" || nodeID == "" {
		return false
	}
	cur, ok := nodes.Node(nodeID)
	for steps := 0; ok && steps <= nodes.Len(); steps++ {
		if cur.IsRoot() {
			return false
		}
		pid := cur.Parent()
		if pid == ancestorID {
			return true
		}
		cur, ok = nodes.Node(pid)
	}
	return false
}

// CanNestInside reports whether dragged may become a child of target.
func CanNestInside(nodes Lookup, target, dragged model.Node) bool {
	if !ParentAccepts(target.Type, dragged.Type) {
		return false
	}
	if target.ID == dragged.ID {
		return false
	}
	return !IsAncestor(nodes, dragged.ID, target.ID)
}

// CanBeSiblingOf reports whether dragged may live in the sibling group under targetParentID.
// A nil (or empty) parent is the root group, which only accepts books.
func CanBeSiblingOf(nodes Lookup, targetParentID *string, dragged model.Node) bool {
	if targetParentID == nil || *targetParentID == "" {
		return IsRootType(dragged.Type)
	}
	pid := *targetParentID
	if pid == dragged.ID {
		return false
	}
	if IsAncestor(nodes, dragged.ID, pid) {
		return false
	}
	parent, ok := nodes.Node(pid)
	if !ok {
		return false
	}
	return ParentAccepts(parent.Type, dragged.Type)
}

// CanNestAllInside applies CanNestInside to every member of a drag set.
// An empty set is never a legal drop.
func CanNestAllInside(nodes Lookup, target model.Node, dragged []model.Node) bool {
	if len(dragged) == 0 {
		return false
	}
	for _, d := range dragged {
		if !CanNestInside(nodes, target, d) {
			return false
		}
	}
	return true
}

// CanAllBeSiblingsOf applies CanBeSiblingOf to every member of a drag set.
func CanAllBeSiblingsOf(nodes Lookup, targetParentID *string, dragged []model.Node) bool {
	if len(dragged) == 0 {
		return false
	}
	for _, d := range dragged {
		if !CanBeSiblingOf(nodes, targetParentID, d) {
			return false
		}
	}
	return true
}

// Homogeneous reports whether every node shares the first node's type.
func Homogeneous(nodes []model.Node) bool {
	for i := 1; i < len(nodes); i++ {
		if nodes[i].Type != nodes[0].Type {
			return false
		}
	}
	return true
}
