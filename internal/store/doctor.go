package store

import (
	"fmt"
	"sort"

	"storyline-cli/internal/hierarchy"
	"storyline-cli/internal/model"
)

type IssueLevel string

const (
	IssueLevelError IssueLevel = "error"
	IssueLevelWarn  IssueLevel = "warn"
)

type Issue struct {
	Level   IssueLevel `json:"level"`
	Code    string     `json:"code"`
	Message string     `json:"message"`
	NodeID  string     `json:"nodeId,omitempty"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

func (r Report) HasErrors() bool {
	for _, it := range r.Issues {
		if it.Level == IssueLevelError {
			return true
		}
	}
	return false
}

// Check audits the collection against the structural invariants. Collections built only
// through DB operations always pass; loaded or imported data may not.
func (db *DB) Check() Report {
	issues := []Issue{}
	ids := make([]string, 0, len(db.nodes))
	for id := range db.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	type groupKey struct {
		parent string
		order  int
	}
	seenOrder := map[groupKey]string{}

	for _, id := range ids {
		n := db.nodes[id]

		if n.IsRoot() {
			if !hierarchy.IsRootType(n.Type) {
				issues = append(issues, Issue{
					Level:   IssueLevelError,
					Code:    "hierarchy_mismatch",
					Message: fmt.Sprintf("%s %s is a root; only books may be roots", n.Type, id),
					NodeID:  id,
				})
			}
		} else if p, ok := db.nodes[n.Parent()]; !ok {
			issues = append(issues, Issue{
				Level:   IssueLevelError,
				Code:    "missing_parent",
				Message: fmt.Sprintf("%s %s references missing parent %s", n.Type, id, n.Parent()),
				NodeID:  id,
			})
		} else if !hierarchy.ParentAccepts(p.Type, n.Type) {
			issues = append(issues, Issue{
				Level:   IssueLevelError,
				Code:    "hierarchy_mismatch",
				Message: fmt.Sprintf("%s %s is under %s %s", n.Type, id, p.Type, p.ID),
				NodeID:  id,
			})
		}

		if db.onCycle(n) {
			issues = append(issues, Issue{
				Level:   IssueLevelError,
				Code:    "cycle",
				Message: fmt.Sprintf("%s %s is its own ancestor", n.Type, id),
				NodeID:  id,
			})
		}

		k := groupKey{parent: n.Parent(), order: n.Order}
		if other, dup := seenOrder[k]; dup {
			issues = append(issues, Issue{
				Level:   IssueLevelWarn,
				Code:    "duplicate_order",
				Message: fmt.Sprintf("%s and %s share order %d", other, id, n.Order),
				NodeID:  id,
			})
		} else {
			seenOrder[k] = id
		}

		if !n.IncludeInFull.Valid() {
			issues = append(issues, Issue{
				Level:   IssueLevelWarn,
				Code:    "invalid_include",
				Message: fmt.Sprintf("%s has includeInFull %d", id, int(n.IncludeInFull)),
				NodeID:  id,
			})
		}
		if !n.Status.Valid() {
			issues = append(issues, Issue{
				Level:   IssueLevelWarn,
				Code:    "invalid_status",
				Message: fmt.Sprintf("%s has unknown status %q", id, n.Status),
				NodeID:  id,
			})
		}
		if n.Scene != nil && n.Type != model.NodeScene {
			issues = append(issues, Issue{
				Level:   IssueLevelWarn,
				Code:    "scene_meta_on_non_scene",
				Message: fmt.Sprintf("%s %s carries scene metadata", n.Type, id),
				NodeID:  id,
			})
		}
	}
	return Report{Issues: issues}
}

// onCycle reports whether following n's parent links returns to n.
func (db *DB) onCycle(n model.Node) bool {
	cur := n
	for steps := 0; steps <= len(db.nodes); steps++ {
		if cur.IsRoot() {
			return false
		}
		if cur.Parent() == n.ID {
			return true
		}
		p, ok := db.nodes[cur.Parent()]
		if !ok {
			return false
		}
		cur = p
	}
	return false
}
