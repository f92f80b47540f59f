package store

import (
	"storyline-cli/internal/model"
)

// SelectNode makes id the active node when it is a scene and reports true. Any other type is
// redirected to an expand/collapse toggle (when it has children) and the selection is left
// untouched.
func (db *DB) SelectNode(id string) bool {
	n, ok := db.nodes[id]
	if !ok {
		return false
	}
	if n.Type != model.NodeScene {
		if db.hasChildren(id) {
			db.ToggleExpanded(id)
		}
		return false
	}
	db.selectedID = id
	// Reveal the selection. The walk is bounded in case of corrupt parent links.
	cur := n
	for steps := 0; !cur.IsRoot() && steps < len(db.nodes); steps++ {
		pid := cur.Parent()
		if db.collapsed[pid] {
			delete(db.collapsed, pid)
			db.treeOK = false
		}
		p, ok := db.nodes[pid]
		if !ok {
			break
		}
		cur = p
	}
	return true
}

// SelectedID returns the active scene id, or "".
func (db *DB) SelectedID() string { return db.selectedID }

func (db *DB) ClearSelection() { db.selectedID = "" }

func (db *DB) IsExpanded(id string) bool { return !db.collapsed[id] }

func (db *DB) ToggleExpanded(id string) {
	if _, ok := db.nodes[id]; !ok {
		return
	}
	db.SetExpanded(id, db.collapsed[id])
}

func (db *DB) SetExpanded(id string, expanded bool) {
	if _, ok := db.nodes[id]; !ok {
		return
	}
	if expanded == !db.collapsed[id] {
		return
	}
	if expanded {
		delete(db.collapsed, id)
	} else {
		db.collapsed[id] = true
	}
	db.treeOK = false
}

// UIState is the persisted slice of transient view state.
type UIState struct {
	Collapsed  []string `json:"collapsed,omitempty"`
	SelectedID string   `json:"selectedId,omitempty"`
}

func (db *DB) UIState() UIState {
	return UIState{Collapsed: sortedIDs(db.collapsed), SelectedID: db.selectedID}
}

// RestoreUIState applies a saved UIState. Unknown ids are ignored and a non-scene selection
// is dropped.
func (db *DB) RestoreUIState(st UIState) {
	db.collapsed = map[string]bool{}
	for _, id := range st.Collapsed {
		if _, ok := db.nodes[id]; ok {
			db.collapsed[id] = true
		}
	}
	db.selectedID = ""
	if n, ok := db.nodes[st.SelectedID]; ok && n.Type == model.NodeScene {
		db.selectedID = n.ID
	}
	db.treeOK = false
}

func (db *DB) hasChildren(id string) bool {
	for _, n := range db.nodes {
		if n.Parent() == id && !n.IsRoot() {
			return true
		}
	}
	return false
}
