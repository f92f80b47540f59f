package store

import (
	"errors"
	"sort"
	"strings"

	"storyline-cli/internal/hierarchy"
	"storyline-cli/internal/model"
	"storyline-cli/internal/treeorder"
)

var errEmptyMove = errors.New("move: no nodes given")

// PlaceInGroup returns the final id sequence of a sibling group after inserting movingIDs
// at index. dest must already exclude the moving nodes. index is clamped to [0, len(dest)].
func PlaceInGroup(dest []model.Node, movingIDs []string, index int) []string {
	if index < 0 {
		index = 0
	}
	if index > len(dest) {
		index = len(dest)
	}
	out := make([]string, 0, len(dest)+len(movingIDs))
	for _, n := range dest[:index] {
		out = append(out, n.ID)
	}
	out = append(out, movingIDs...)
	for _, n := range dest[index:] {
		out = append(out, n.ID)
	}
	return out
}

// MoveNode moves a single node. See MoveNodes.
func (db *DB) MoveNode(id string, newParentID *string, newIndex int) error {
	return db.MoveNodes([]string{id}, newParentID, newIndex)
}

// MoveNodes moves ids, in the given order, under newParentID starting at index. index counts
// positions in the destination group with the moving nodes removed.
//
// Hierarchy and acyclicity are re-checked for every member before anything is touched; any
// failure aborts the whole batch. On success the destination group and every group the batch
// left are renumbered densely and swapped in with a single commit. A move that changes nothing
// emits no commit.
func (db *DB) MoveNodes(ids []string, newParentID *string, index int) error {
	newParentID = normalizeParent(newParentID)
	ids = dedupeIDs(ids)
	if len(ids) == 0 {
		return errEmptyMove
	}

	moving := make(map[string]bool, len(ids))
	batch := make([]model.Node, 0, len(ids))
	for _, id := range ids {
		n, ok := db.nodes[id]
		if !ok {
			return errNodeNotFound(id)
		}
		moving[id] = true
		batch = append(batch, n)
	}
	if newParentID != nil {
		pid := *newParentID
		if _, ok := db.nodes[pid]; !ok {
			return errNodeNotFound(pid)
		}
		for _, n := range batch {
			if n.ID == pid || hierarchy.IsAncestor(db, n.ID, pid) {
				return CycleDetectedError{NodeID: n.ID, ParentID: pid}
			}
		}
	}
	for _, n := range batch {
		if err := db.checkPlacement(n.ID, n.Type, newParentID); err != nil {
			return err
		}
	}

	all := db.values()
	final := PlaceInGroup(treeorder.SiblingsOf(all, newParentID, moving), ids, index)

	next := db.cloneNodes()
	now := db.now()
	var changed []string
	for i, id := range final {
		n := next[id]
		reparent := moving[id] && !model.SameParent(n.ParentID, newParentID)
		if n.Order == i && !reparent {
			continue
		}
		n.Order = i
		if reparent {
			n.ParentID = copyParent(newParentID)
		}
		n.UpdatedAt = now
		next[id] = n
		changed = append(changed, id)
	}

	// Close the gaps in the groups the batch came from.
	sources := map[string]*string{}
	for _, n := range batch {
		if !model.SameParent(n.ParentID, newParentID) {
			sources[n.Parent()] = n.ParentID
		}
	}
	keys := make([]string, 0, len(sources))
	for k := range sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for i, s := range treeorder.SiblingsOf(all, sources[k], moving) {
			if s.Order == i {
				continue
			}
			s.Order = i
			s.UpdatedAt = now
			next[s.ID] = s
			changed = append(changed, s.ID)
		}
	}

	if len(changed) == 0 {
		return nil
	}
	db.commit("node.move", next, changed, nil)
	return nil
}

// MoveUp swaps id with its previous sibling. It reports false when id is already first.
func (db *DB) MoveUp(id string) (bool, error) {
	return db.shift(id, -1)
}

// MoveDown swaps id with its next sibling. It reports false when id is already last.
func (db *DB) MoveDown(id string) (bool, error) {
	return db.shift(id, 1)
}

func (db *DB) shift(id string, delta int) (bool, error) {
	n, ok := db.nodes[id]
	if !ok {
		return false, errNodeNotFound(id)
	}
	sibs := treeorder.SiblingsOf(db.values(), n.ParentID, nil)
	pos := -1
	for i, s := range sibs {
		if s.ID == id {
			pos = i
			break
		}
	}
	to := pos + delta
	if pos < 0 || to < 0 || to >= len(sibs) {
		return false, nil
	}
	if err := db.MoveNodes([]string{id}, n.ParentID, to); err != nil {
		return false, err
	}
	return true, nil
}

func dedupeIDs(ids []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func copyParent(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
