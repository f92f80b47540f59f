package mutate

import (
	"fmt"
	"strings"

	"storyline-cli/internal/dragdrop"
	"storyline-cli/internal/model"
	"storyline-cli/internal/store"
)

// MoveRelative places ids before, after or inside refID, going through the same drop logic as a
// pointer drag. ids may hold several nodes of one type; they keep their reading order.
func MoveRelative(db *store.DB, ids []string, refID string, pos model.DropPosition) (dragdrop.DropResult, error) {
	refID = strings.TrimSpace(refID)
	if len(ids) == 0 {
		return dragdrop.DropResult{}, fmt.Errorf("nothing to move")
	}
	var s dragdrop.Session
	if err := s.Start(db, ids[0], ids); err != nil {
		return dragdrop.DropResult{}, err
	}
	if len(s.Dragging()) != len(uniq(ids)) {
		s.End()
		return dragdrop.DropResult{}, fmt.Errorf("moved nodes must all exist and share one type")
	}
	if _, ok := db.Node(refID); !ok {
		s.End()
		return dragdrop.DropResult{}, store.NotFoundError{Kind: "node", ID: refID}
	}
	if _, ok := s.Aim(db, refID, pos); !ok {
		s.End()
		return dragdrop.DropResult{}, fmt.Errorf("cannot place %s %s %s: %w", strings.Join(ids, ","), pos, refID, dragdrop.ErrNoDropTarget)
	}
	return s.Drop(db)
}

func uniq(ids []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
