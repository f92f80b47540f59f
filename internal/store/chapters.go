package store

import (
	"sort"

	"storyline-cli/internal/model"
	"storyline-cli/internal/treeorder"
)

// PrecedingChapters returns every chapter that comes before id in reading order, across
// arcs and books. Sibling order alone cannot answer this, so it goes through DisplayOrder.
func (db *DB) PrecedingChapters(id string) ([]model.Node, error) {
	if _, ok := db.nodes[id]; !ok {
		return nil, errNodeNotFound(id)
	}
	order := treeorder.DisplayOrder(db.Tree())
	stop, ok := order[id]
	if !ok {
		// Unreachable from a root; nothing precedes it.
		return nil, nil
	}
	var out []model.Node
	for nid, pos := range order {
		if pos >= stop {
			continue
		}
		if n := db.nodes[nid]; n.Type == model.NodeChapter {
			out = append(out, n.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i].ID] < order[out[j].ID] })
	return out, nil
}
