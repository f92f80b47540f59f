// Package treeorder derives the display tree and the global reading order from a flat node set.
//
// Sibling `order` is only meaningful inside one parent group. Anything that needs "before/after
// in the story" (multi-selection normalization, preceding chapters) goes through DisplayOrder.
package treeorder

import (
	"math"
	"sort"

	"storyline-cli/internal/model"
)

// Compare orders two siblings: order, then CreatedAt, then ID. The tie-breaks keep rendering
// stable for imported data that carries duplicate orders.
func Compare(a, b model.Node) int {
	if a.Order != b.Order {
		if a.Order < b.Order {
			return -1
		}
		return 1
	}
	if a.CreatedAt.Before(b.CreatedAt) {
		return -1
	}
	if a.CreatedAt.After(b.CreatedAt) {
		return 1
	}
	if a.ID < b.ID {
		return -1
	}
	if a.ID > b.ID {
		return 1
	}
	return 0
}

// SortSiblings sorts nodes in place by Compare.
func SortSiblings(nodes []model.Node) {
	sort.SliceStable(nodes, func(i, j int) bool { return Compare(nodes[i], nodes[j]) < 0 })
}

// GroupByParent returns children keyed by parent id ("" for roots), each group sorted.
func GroupByParent(nodes []model.Node) map[string][]model.Node {
	groups := map[string][]model.Node{}
	for _, n := range nodes {
		groups[n.Parent()] = append(groups[n.Parent()], n)
	}
	for pid := range groups {
		SortSiblings(groups[pid])
	}
	return groups
}

// BuildTree groups nodes by parent and sorts each group. Nodes whose parent is missing are
// left out, so a dangling subtree never shows up as a fake root.
func BuildTree(nodes []model.Node, expanded func(id string) bool) []model.TreeNode {
	groups := GroupByParent(nodes)

	var build func(pid string, seen map[string]bool) []model.TreeNode
	build = func(pid string, seen map[string]bool) []model.TreeNode {
		sibs := groups[pid]
		if len(sibs) == 0 {
			return nil
		}
		out := make([]model.TreeNode, 0, len(sibs))
		for _, n := range sibs {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			tn := model.TreeNode{ID: n.ID}
			if expanded != nil {
				tn.Expanded = expanded(n.ID)
			}
			tn.Children = build(n.ID, seen)
			out = append(out, tn)
		}
		return out
	}

	return build("", map[string]bool{})
}

// DisplayOrder assigns each tree entry its pre-order depth-first index.
func DisplayOrder(tree []model.TreeNode) map[string]int {
	out := map[string]int{}
	next := 0
	var walk func(ts []model.TreeNode)
	walk = func(ts []model.TreeNode) {
		for _, t := range ts {
			out[t.ID] = next
			next++
			walk(t.Children)
		}
	}
	walk(tree)
	return out
}

// NormalizeByTreeOrder sorts ids by reading order. Unknown ids go last in their input order;
// duplicates are dropped.
func NormalizeByTreeOrder(order map[string]int, ids []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	rank := func(id string) int {
		if v, ok := order[id]; ok {
			return v
		}
		return math.MaxInt
	}
	sort.SliceStable(out, func(i, j int) bool { return rank(out[i]) < rank(out[j]) })
	return out
}

// SiblingsOf returns the sorted group under parentID with the excluded ids removed.
func SiblingsOf(nodes []model.Node, parentID *string, excluding map[string]bool) []model.Node {
	var out []model.Node
	for _, n := range nodes {
		if !model.SameParent(n.ParentID, parentID) {
			continue
		}
		if excluding[n.ID] {
			continue
		}
		out = append(out, n)
	}
	SortSiblings(out)
	return out
}

// Row is one visible line of a flattened tree.
type Row struct {
	ID          string
	Depth       int
	HasChildren bool
	Expanded    bool
}

// Flatten walks the tree in reading order. With onlyExpanded, children of collapsed
// entries are skipped.
func Flatten(tree []model.TreeNode, onlyExpanded bool) []Row {
	var out []Row
	var walk func(ts []model.TreeNode, depth int)
	walk = func(ts []model.TreeNode, depth int) {
		for _, t := range ts {
			out = append(out, Row{
				ID:          t.ID,
				Depth:       depth,
				HasChildren: len(t.Children) > 0,
				Expanded:    t.Expanded,
			})
			if onlyExpanded && !t.Expanded {
				continue
			}
			walk(t.Children, depth+1)
		}
	}
	walk(tree, 0)
	return out
}
