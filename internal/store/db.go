package store

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"storyline-cli/internal/model"
	"storyline-cli/internal/treeorder"
)

// Observer is notified once per committed mutation, after the new collection is in place.
// The commit carries copies; observers must not expect to mutate the store through it.
type Observer func(model.Commit)

type subscription struct {
	fn Observer
}

// DB owns the node collection. It is the only writer of ParentID and Order.
//
// Every structural mutation builds a complete next map and swaps it in once, so readers
// (including observers) never see a partially renumbered sibling group. DB is not safe for
// concurrent use; hosts drive it from a single goroutine.
type DB struct {
	nodes map[string]model.Node

	// UI-facing state. Nodes are expanded unless listed here.
	collapsed  map[string]bool
	selectedID string

	// Derived tree cache, rebuilt lazily after any change.
	tree   []model.TreeNode
	treeOK bool

	seq       uint64
	observers []*subscription

	now   func() time.Time
	newID func() string
}

func NewDB() *DB {
	return &DB{
		nodes:     map[string]model.Node{},
		collapsed: map[string]bool{},
		now:       func() time.Time { return time.Now().UTC() },
		newID:     newNodeID,
	}
}

// SetNodes replaces the whole collection (used when loading). UI state is reset and no
// commit is emitted. Structural problems in the input are left for Check to report.
func (db *DB) SetNodes(nodes []model.Node) error {
	next, err := buildArena(nodes)
	if err != nil {
		return err
	}
	db.nodes = next
	db.resetView()
	return nil
}

// ReplaceNodes swaps in a whole new collection as one commit, e.g. when restoring a backup.
// Every incoming node is reported as changed; ids that disappear are reported as removed.
func (db *DB) ReplaceNodes(nodes []model.Node) error {
	next, err := buildArena(nodes)
	if err != nil {
		return err
	}
	var removed []string
	for id := range db.nodes {
		if _, ok := next[id]; !ok {
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)
	changed := make([]string, 0, len(next))
	for id := range next {
		changed = append(changed, id)
	}
	sort.Strings(changed)

	db.resetView()
	db.commit("node.restore", next, changed, removed)
	return nil
}

func buildArena(nodes []model.Node) (map[string]model.Node, error) {
	next := make(map[string]model.Node, len(nodes))
	for _, n := range nodes {
		id := strings.TrimSpace(n.ID)
		if id == "" {
			return nil, fmt.Errorf("node with empty id")
		}
		if _, dup := next[id]; dup {
			return nil, fmt.Errorf("duplicate node id: %s", id)
		}
		if !n.Type.Valid() {
			return nil, fmt.Errorf("node %s: invalid type %q", id, n.Type)
		}
		n = n.Clone()
		n.ID = id
		if n.ParentID != nil && strings.TrimSpace(*n.ParentID) == "" {
			n.ParentID = nil
		}
		next[id] = n
	}
	return next, nil
}

func (db *DB) resetView() {
	db.collapsed = map[string]bool{}
	db.selectedID = ""
	db.treeOK = false
}

// Node returns a copy of the node with the given id.
func (db *DB) Node(id string) (model.Node, bool) {
	n, ok := db.nodes[id]
	if !ok {
		return model.Node{}, false
	}
	return n.Clone(), true
}

func (db *DB) Len() int { return len(db.nodes) }

// Nodes returns copies of every node in reading order. Nodes that are unreachable from a
// root (dangling parent) come last, sorted by id.
func (db *DB) Nodes() []model.Node {
	order := treeorder.DisplayOrder(db.Tree())
	out := make([]model.Node, 0, len(db.nodes))
	for _, n := range db.nodes {
		out = append(out, n.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		oi, iok := order[out[i].ID]
		oj, jok := order[out[j].ID]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return out[i].ID < out[j].ID
		}
	})
	return out
}

// ChildrenOf returns the sorted children of id. An empty id returns the roots.
func (db *DB) ChildrenOf(id string) []model.Node {
	var pid *string
	if id != "" {
		pid = &id
	}
	sibs := treeorder.SiblingsOf(db.values(), pid, nil)
	for i := range sibs {
		sibs[i] = sibs[i].Clone()
	}
	return sibs
}

// Tree returns the derived display tree. Callers must treat it as read-only.
func (db *DB) Tree() []model.TreeNode {
	if !db.treeOK {
		db.tree = treeorder.BuildTree(db.values(), db.IsExpanded)
		db.treeOK = true
	}
	return db.tree
}

// Seq is the number of commits applied since the DB was created.
func (db *DB) Seq() uint64 { return db.seq }

// Subscribe registers an observer and returns a function that removes it.
func (db *DB) Subscribe(fn Observer) (unsubscribe func()) {
	sub := &subscription{fn: fn}
	db.observers = append(db.observers, sub)
	return func() {
		for i, s := range db.observers {
			if s == sub {
				db.observers = append(db.observers[:i], db.observers[i+1:]...)
				return
			}
		}
	}
}

// SetClock overrides the time source. Intended for tests and imports.
func (db *DB) SetClock(now func() time.Time) {
	if now != nil {
		db.now = now
	}
}

func (db *DB) values() []model.Node {
	out := make([]model.Node, 0, len(db.nodes))
	for _, n := range db.nodes {
		out = append(out, n)
	}
	return out
}

// cloneNodes returns a shallow copy of the arena. Node values are never mutated through
// their pointer fields, so sharing them between generations is safe.
func (db *DB) cloneNodes() map[string]model.Node {
	next := make(map[string]model.Node, len(db.nodes)+1)
	for id, n := range db.nodes {
		next[id] = n
	}
	return next
}

// commit swaps in next and notifies observers.
func (db *DB) commit(kind string, next map[string]model.Node, changed, removed []string) model.Commit {
	db.nodes = next
	db.treeOK = false
	db.seq++

	c := model.Commit{Seq: db.seq, Kind: kind, At: db.now()}
	for _, id := range changed {
		if n, ok := next[id]; ok {
			c.Changed = append(c.Changed, n.Clone())
		}
	}
	if len(removed) > 0 {
		c.Removed = append([]string(nil), removed...)
	}

	subs := append([]*subscription(nil), db.observers...)
	for _, s := range subs {
		s.fn(c)
	}
	return c
}

func (db *DB) uniqueID() string {
	for {
		id := db.newID()
		if _, exists := db.nodes[id]; !exists && id != "" {
			return id
		}
	}
}

func normalizeParent(parentID *string) *string {
	if parentID == nil {
		return nil
	}
	pid := strings.TrimSpace(*parentID)
	if pid == "" {
		return nil
	}
	return &pid
}
