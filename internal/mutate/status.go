package mutate

import (
	"storyline-cli/internal/model"
	"storyline-cli/internal/store"
)

type SetStatusResult struct {
	Node         model.Node
	Changed      bool
	EventPayload map[string]any
}

// SetChapterStatus sets a chapter's workflow status. The empty status clears it.
func SetChapterStatus(db *store.DB, chapterID string, status model.ChapterStatus) (SetStatusResult, error) {
	n, err := findChapter(db, chapterID)
	if err != nil {
		return SetStatusResult{}, err
	}
	prev := n.Status
	if prev == status {
		return SetStatusResult{Node: n, Changed: false}, nil
	}
	n, err = db.UpdateNode(n.ID, store.NodePatch{Status: &status})
	if err != nil {
		return SetStatusResult{}, err
	}
	return SetStatusResult{
		Node:    n,
		Changed: true,
		EventPayload: map[string]any{
			"from": string(prev),
			"to":   string(status),
		},
	}, nil
}

// NextStatus steps through the workflow, wrapping from done back to none.
func NextStatus(s model.ChapterStatus) model.ChapterStatus {
	for i, st := range model.ChapterStatuses {
		if st == s {
			if i+1 < len(model.ChapterStatuses) {
				return model.ChapterStatuses[i+1]
			}
			return model.StatusNone
		}
	}
	return model.ChapterStatuses[0]
}
