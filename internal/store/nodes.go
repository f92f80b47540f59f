package store

import (
	"sort"
	"strings"

	"storyline-cli/internal/hierarchy"
	"storyline-cli/internal/model"
	"storyline-cli/internal/treeorder"
)

// NodePatch carries the payload fields UpdateNode may change. Nil fields are left as is.
// Structural fields (id, type, parent, order) are only changed by the move operations.
type NodePatch struct {
	Title         *string
	Summary       *string
	Status        *model.ChapterStatus
	IncludeInFull *model.IncludeMode
	Scene         *model.SceneMeta
}

func (p NodePatch) empty() bool {
	return p.Title == nil && p.Summary == nil && p.Status == nil && p.IncludeInFull == nil && p.Scene == nil
}

// AddNode creates a node as the last child of parentID (or the last root when parentID is nil).
// The parent is expanded so the new node is visible.
func (db *DB) AddNode(parentID *string, t model.NodeType, title string) (model.Node, error) {
	parentID = normalizeParent(parentID)
	if err := db.checkPlacement("", t, parentID); err != nil {
		return model.Node{}, err
	}

	order := 0
	sibs := treeorder.SiblingsOf(db.values(), parentID, nil)
	if len(sibs) > 0 {
		order = sibs[len(sibs)-1].Order + 1
	}

	n := db.newNode(parentID, t, title, order)
	next := db.cloneNodes()
	next[n.ID] = n
	if parentID != nil {
		delete(db.collapsed, *parentID)
	}
	db.commit("node.add", next, []string{n.ID}, nil)
	return n.Clone(), nil
}

// InsertNodeBefore creates a node of type t in beforeID's slot. Siblings from that slot on
// shift down by one; earlier siblings keep their order values.
func (db *DB) InsertNodeBefore(beforeID string, t model.NodeType, title string) (model.Node, error) {
	target, ok := db.nodes[beforeID]
	if !ok {
		return model.Node{}, errNodeNotFound(beforeID)
	}
	parentID := normalizeParent(target.ParentID)
	if err := db.checkPlacement("", t, parentID); err != nil {
		return model.Node{}, err
	}

	sibs := treeorder.SiblingsOf(db.values(), parentID, nil)
	pos := 0
	for i, s := range sibs {
		if s.ID == beforeID {
			pos = i
			break
		}
	}

	next := db.cloneNodes()
	n := db.newNode(parentID, t, title, target.Order)
	next[n.ID] = n
	changed := []string{n.ID}

	// Shift the run starting at the target so orders stay strictly increasing.
	want := target.Order + 1
	now := db.now()
	for _, s := range sibs[pos:] {
		if s.Order >= want {
			want = s.Order + 1
			continue
		}
		s.Order = want
		s.UpdatedAt = now
		next[s.ID] = s
		changed = append(changed, s.ID)
		want++
	}
	if parentID != nil {
		delete(db.collapsed, *parentID)
	}
	db.commit("node.insert", next, changed, nil)
	return n.Clone(), nil
}

// UpdateNode merges the non-nil patch fields into the node.
func (db *DB) UpdateNode(id string, patch NodePatch) (model.Node, error) {
	if err := db.UpdateNodes([]string{id}, patch); err != nil {
		return model.Node{}, err
	}
	n, _ := db.Node(id)
	return n, nil
}

// UpdateNodes applies the same patch to every id in one commit. Either every node is
// updated or none is.
func (db *DB) UpdateNodes(ids []string, patch NodePatch) error {
	if err := validatePatch(patch); err != nil {
		return err
	}
	for _, id := range ids {
		n, ok := db.nodes[id]
		if !ok {
			return errNodeNotFound(id)
		}
		if patch.Scene != nil && n.Type != model.NodeScene {
			return InvalidPayloadError{NodeID: id, Field: "scene", Reason: "only scenes carry scene metadata"}
		}
	}
	if len(ids) == 0 || patch.empty() {
		return nil
	}

	next := db.cloneNodes()
	now := db.now()
	var changed []string
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		n := next[id]
		if !applyPatch(&n, patch) {
			continue
		}
		n.UpdatedAt = now
		next[id] = n
		changed = append(changed, id)
	}
	if len(changed) == 0 {
		return nil
	}
	db.commit("node.update", next, changed, nil)
	return nil
}

// DeleteNode removes id and every descendant. The removed ids are returned in reading order
// so callers can reconcile attached content.
func (db *DB) DeleteNode(id string) ([]string, error) {
	if _, ok := db.nodes[id]; !ok {
		return nil, errNodeNotFound(id)
	}

	byParent := map[string][]string{}
	for _, n := range db.nodes {
		if !n.IsRoot() {
			byParent[n.Parent()] = append(byParent[n.Parent()], n.ID)
		}
	}
	doomed := map[string]bool{}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if doomed[cur] {
			continue
		}
		doomed[cur] = true
		stack = append(stack, byParent[cur]...)
	}

	removed := make([]string, 0, len(doomed))
	for rid := range doomed {
		removed = append(removed, rid)
	}
	order := treeorder.DisplayOrder(db.Tree())
	removed = treeorder.NormalizeByTreeOrder(order, removed)

	next := make(map[string]model.Node, len(db.nodes)-len(doomed))
	for nid, n := range db.nodes {
		if !doomed[nid] {
			next[nid] = n
		}
	}
	for rid := range doomed {
		delete(db.collapsed, rid)
	}
	if doomed[db.selectedID] {
		db.selectedID = ""
	}
	db.commit("node.delete", next, nil, removed)
	return removed, nil
}

// checkPlacement reports whether a node of type t may live under parentID.
func (db *DB) checkPlacement(nodeID string, t model.NodeType, parentID *string) error {
	if !t.Valid() {
		_, err := model.ParseNodeType(string(t))
		return err
	}
	if parentID == nil {
		if !hierarchy.IsRootType(t) {
			return InvalidHierarchyError{NodeID: nodeID, Child: t}
		}
		return nil
	}
	parent, ok := db.nodes[*parentID]
	if !ok {
		return errNodeNotFound(*parentID)
	}
	if !hierarchy.ParentAccepts(parent.Type, t) {
		return InvalidHierarchyError{NodeID: nodeID, Child: t, Parent: parent.Type}
	}
	return nil
}

func (db *DB) newNode(parentID *string, t model.NodeType, title string, order int) model.Node {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New " + string(t)
	}
	now := db.now()
	n := model.Node{
		ID:            db.uniqueID(),
		Type:          t,
		Order:         order,
		Title:         title,
		IncludeInFull: model.IncludeSummary,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if parentID != nil {
		pid := *parentID
		n.ParentID = &pid
	}
	return n
}

func validatePatch(p NodePatch) error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return InvalidPayloadError{Field: "title", Reason: "must not be empty"}
	}
	if p.Status != nil && !p.Status.Valid() {
		return InvalidPayloadError{Field: "status", Reason: "unknown status " + string(*p.Status)}
	}
	if p.IncludeInFull != nil && !p.IncludeInFull.Valid() {
		return InvalidPayloadError{Field: "includeInFull", Reason: "expected 0, 1 or 2"}
	}
	return nil
}

// applyPatch merges p into n and reports whether anything changed.
func applyPatch(n *model.Node, p NodePatch) bool {
	changed := false
	if p.Title != nil {
		if t := strings.TrimSpace(*p.Title); t != n.Title {
			n.Title = t
			changed = true
		}
	}
	if p.Summary != nil && *p.Summary != n.Summary {
		n.Summary = *p.Summary
		changed = true
	}
	if p.Status != nil && *p.Status != n.Status {
		n.Status = *p.Status
		changed = true
	}
	if p.IncludeInFull != nil && *p.IncludeInFull != n.IncludeInFull {
		n.IncludeInFull = *p.IncludeInFull
		changed = true
	}
	if p.Scene != nil {
		sc := (model.Node{Scene: p.Scene}).Clone().Scene
		n.Scene = sc
		changed = true
	}
	return changed
}

// sortedIDs is used where map iteration order would otherwise leak into output.
func sortedIDs(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for id := range m {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
