package mutate

import (
	"strings"

	"storyline-cli/internal/model"
	"storyline-cli/internal/store"
)

type IncludeResult struct {
	Node         model.Node
	Changed      bool
	EventPayload map[string]any
}

// NextIncludeMode steps summary → full → none → summary.
func NextIncludeMode(m model.IncludeMode) model.IncludeMode {
	switch m {
	case model.IncludeSummary:
		return model.IncludeFull
	case model.IncludeFull:
		return model.IncludeNone
	default:
		return model.IncludeSummary
	}
}

// CycleIncludeInFull advances a chapter's include mode one step.
func CycleIncludeInFull(db *store.DB, chapterID string) (IncludeResult, error) {
	n, err := findChapter(db, chapterID)
	if err != nil {
		return IncludeResult{}, err
	}
	return SetIncludeInFull(db, n.ID, NextIncludeMode(n.IncludeInFull))
}

// SetIncludeInFull sets a chapter's include mode.
func SetIncludeInFull(db *store.DB, chapterID string, mode model.IncludeMode) (IncludeResult, error) {
	n, err := findChapter(db, chapterID)
	if err != nil {
		return IncludeResult{}, err
	}
	prev := n.IncludeInFull
	if prev == mode {
		return IncludeResult{Node: n, Changed: false}, nil
	}
	n, err = db.UpdateNode(n.ID, store.NodePatch{IncludeInFull: &mode})
	if err != nil {
		return IncludeResult{}, err
	}
	return IncludeResult{
		Node:    n,
		Changed: true,
		EventPayload: map[string]any{
			"from": prev.String(),
			"to":   mode.String(),
		},
	}, nil
}

type PrecedingResult struct {
	ChapterIDs   []string
	Changed      bool
	EventPayload map[string]any
}

// SetIncludeForPrecedingChapters sets mode on every chapter before nodeID in reading order,
// in one commit. nodeID may be any node type.
func SetIncludeForPrecedingChapters(db *store.DB, nodeID string, mode model.IncludeMode) (PrecedingResult, error) {
	nodeID = strings.TrimSpace(nodeID)
	if db == nil || nodeID == "" {
		return PrecedingResult{}, nil
	}
	if !mode.Valid() {
		return PrecedingResult{}, store.InvalidPayloadError{NodeID: nodeID, Field: "includeInFull", Reason: "expected 0, 1 or 2"}
	}
	chapters, err := db.PrecedingChapters(nodeID)
	if err != nil {
		return PrecedingResult{}, err
	}
	ids := make([]string, 0, len(chapters))
	changed := false
	for _, c := range chapters {
		ids = append(ids, c.ID)
		if c.IncludeInFull != mode {
			changed = true
		}
	}
	if !changed {
		return PrecedingResult{ChapterIDs: ids}, nil
	}
	if err := db.UpdateNodes(ids, store.NodePatch{IncludeInFull: &mode}); err != nil {
		return PrecedingResult{}, err
	}
	return PrecedingResult{
		ChapterIDs: ids,
		Changed:    true,
		EventPayload: map[string]any{
			"to":       mode.String(),
			"chapters": len(ids),
		},
	}, nil
}

func findChapter(db *store.DB, id string) (model.Node, error) {
	return findTyped(db, id, model.NodeChapter)
}

func findTyped(db *store.DB, id string, want model.NodeType) (model.Node, error) {
	id = strings.TrimSpace(id)
	n, ok := db.Node(id)
	if !ok {
		return model.Node{}, store.NotFoundError{Kind: "node", ID: id}
	}
	if n.Type != want {
		return model.Node{}, WrongTypeError{ID: id, Want: want, Got: n.Type}
	}
	return n, nil
}
