// Package dragdrop turns pointer gestures over outline rows into validated batch moves.
//
// A Session is Idle until Start, Dragging until Drop or End, and never persisted. It is kept
// apart from the store and passed the store explicitly on every call.
package dragdrop

import (
	"errors"
	"fmt"

	"storyline-cli/internal/hierarchy"
	"storyline-cli/internal/model"
	"storyline-cli/internal/store"
	"storyline-cli/internal/treeorder"
)

var (
	ErrSessionActive = errors.New("drag session already active")
	ErrNotDragging   = errors.New("no drag in progress")
	ErrNoDropTarget  = errors.New("no drop target")
)

// Tree is the part of the node store a drag needs.
type Tree interface {
	hierarchy.Lookup
	Tree() []model.TreeNode
	ChildrenOf(id string) []model.Node
	MoveNodes(ids []string, newParentID *string, index int) error
	SetExpanded(id string, expanded bool)
}

type DropTarget struct {
	NodeID   string             `json:"nodeId"`
	Position model.DropPosition `json:"position"`
}

// DropResult describes an applied drop.
type DropResult struct {
	Target   DropTarget `json:"target"`
	Moved    []string   `json:"moved"`
	ParentID *string    `json:"parentId"`
	Index    int        `json:"index"`
}

type Session struct {
	active   bool
	dragging []string
	inSet    map[string]bool
	target   *DropTarget
}

func (s *Session) Active() bool { return s.active }

// Dragging returns the drag set in reading order.
func (s *Session) Dragging() []string {
	return append([]string(nil), s.dragging...)
}

// Target returns the currently recorded drop target, if any.
func (s *Session) Target() (DropTarget, bool) {
	if s.target == nil {
		return DropTarget{}, false
	}
	return *s.target, true
}

// Start begins a drag from anchorID. The selection becomes the drag set only when it contains
// the anchor and every member has the anchor's type; otherwise the anchor is dragged alone.
func (s *Session) Start(db Tree, anchorID string, selection []string) error {
	if s.active {
		return ErrSessionActive
	}
	anchor, ok := db.Node(anchorID)
	if !ok {
		return store.NotFoundError{Kind: "node", ID: anchorID}
	}

	set := []string{anchorID}
	if containsID(selection, anchorID) {
		uniform := true
		var members []string
		for _, id := range selection {
			n, ok := db.Node(id)
			if !ok {
				continue
			}
			if n.Type != anchor.Type {
				uniform = false
				break
			}
			members = append(members, id)
		}
		if uniform {
			set = members
		}
	}

	order := treeorder.DisplayOrder(db.Tree())
	s.dragging = treeorder.NormalizeByTreeOrder(order, set)
	s.inSet = make(map[string]bool, len(s.dragging))
	for _, id := range s.dragging {
		s.inSet[id] = true
	}
	s.target = nil
	s.active = true
	return nil
}

// Over records where the dragged set would land when the pointer is at offsetY within the
// row of targetID. It returns false, and clears any previous target, when no placement against
// this row is legal. Ancestors of the row are never searched for a better fit.
func (s *Session) Over(db Tree, targetID string, offsetY, rowHeight float64) (DropTarget, bool) {
	s.target = nil
	target, dragged, ok := s.candidate(db, targetID)
	if !ok {
		return DropTarget{}, false
	}

	canInside := func() bool { return hierarchy.CanNestAllInside(db, target, dragged) }
	canSibling := func() bool { return hierarchy.CanAllBeSiblingsOf(db, target.ParentID, dragged) }

	var pos model.DropPosition
	switch gesture := Classify(offsetY, rowHeight); gesture {
	case model.DropInside:
		switch {
		case canInside():
			pos = model.DropInside
		case canSibling():
			pos = nearestEdge(offsetY, rowHeight)
		}
	default:
		switch {
		case canSibling():
			pos = gesture
		case canInside():
			pos = model.DropInside
		}
	}
	if pos == "" {
		return DropTarget{}, false
	}
	s.target = &DropTarget{NodeID: targetID, Position: pos}
	return *s.target, true
}

// Aim records an exact placement with no gesture fallback, for keyboard and scripted moves.
// It returns false, and clears any previous target, when pos is illegal against targetID.
func (s *Session) Aim(db Tree, targetID string, pos model.DropPosition) (DropTarget, bool) {
	s.target = nil
	target, dragged, ok := s.candidate(db, targetID)
	if !ok {
		return DropTarget{}, false
	}
	switch pos {
	case model.DropInside:
		ok = hierarchy.CanNestAllInside(db, target, dragged)
	case model.DropBefore, model.DropAfter:
		ok = hierarchy.CanAllBeSiblingsOf(db, target.ParentID, dragged)
	default:
		ok = false
	}
	if !ok {
		return DropTarget{}, false
	}
	s.target = &DropTarget{NodeID: targetID, Position: pos}
	return *s.target, true
}

// candidate resolves the hovered row and the drag set, rejecting rows that can never be
// targets.
func (s *Session) candidate(db Tree, targetID string) (model.Node, []model.Node, bool) {
	if !s.active || s.inSet[targetID] {
		return model.Node{}, nil, false
	}
	target, ok := db.Node(targetID)
	if !ok {
		return model.Node{}, nil, false
	}
	dragged, ok := s.draggedNodes(db)
	if !ok || !hierarchy.Homogeneous(dragged) {
		return model.Node{}, nil, false
	}
	return target, dragged, true
}

// Drop applies the recorded target as one batch move and ends the session whatever the
// outcome.
func (s *Session) Drop(db Tree) (DropResult, error) {
	defer s.End()
	if !s.active {
		return DropResult{}, ErrNotDragging
	}
	if s.target == nil {
		return DropResult{}, ErrNoDropTarget
	}
	t := *s.target
	target, ok := db.Node(t.NodeID)
	if !ok {
		return DropResult{}, store.NotFoundError{Kind: "node", ID: t.NodeID}
	}

	res := DropResult{Target: t, Moved: s.Dragging()}
	switch t.Position {
	case model.DropInside:
		pid := target.ID
		res.ParentID = &pid
		res.Index = len(s.without(db.ChildrenOf(target.ID)))
	case model.DropBefore, model.DropAfter:
		res.ParentID = target.ParentID
		sibs := s.without(db.ChildrenOf(target.Parent()))
		idx := -1
		for i, n := range sibs {
			if n.ID == target.ID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return DropResult{}, fmt.Errorf("drop target %s not found among its siblings", target.ID)
		}
		if t.Position == model.DropAfter {
			idx++
		}
		res.Index = idx
	default:
		return DropResult{}, fmt.Errorf("invalid drop position: %q", t.Position)
	}

	if err := db.MoveNodes(res.Moved, res.ParentID, res.Index); err != nil {
		return DropResult{}, err
	}
	if t.Position == model.DropInside {
		db.SetExpanded(target.ID, true)
	}
	return res, nil
}

// End discards the session.
func (s *Session) End() {
	s.active = false
	s.dragging = nil
	s.inSet = nil
	s.target = nil
}

// Label describes the drag set for previews, e.g. "3 chapters".
func (s *Session) Label(db Tree) string {
	if len(s.dragging) == 0 {
		return ""
	}
	n, ok := db.Node(s.dragging[0])
	if !ok {
		return ""
	}
	if len(s.dragging) == 1 {
		return n.Title
	}
	return fmt.Sprintf("%d %s", len(s.dragging), n.Type.Plural(len(s.dragging)))
}

func (s *Session) draggedNodes(db Tree) ([]model.Node, bool) {
	out := make([]model.Node, 0, len(s.dragging))
	for _, id := range s.dragging {
		n, ok := db.Node(id)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, len(out) > 0
}

func (s *Session) without(nodes []model.Node) []model.Node {
	out := nodes[:0:0]
	for _, n := range nodes {
		if !s.inSet[n.ID] {
			out = append(out, n)
		}
	}
	return out
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
