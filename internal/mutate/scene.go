package mutate

import (
	"errors"
	"reflect"
	"strings"

	"storyline-cli/internal/model"
	"storyline-cli/internal/store"
)

var ErrInvalidPerspective = errors.New("invalid perspective (expected FIRST|THIRD)")

// ScenePatch edits scene metadata. Nil fields are left unchanged.
type ScenePatch struct {
	Goal                 *string
	ViewpointCharacterID *string
	Perspective          *model.Perspective
	StoryTime            *int64
	ClearStoryTime       bool
	ActiveCharacterIDs   []string
	ActiveContextItemIDs []string
}

type SceneResult struct {
	Node         model.Node
	Changed      bool
	EventPayload map[string]any
}

// UpdateSceneMeta merges p into a scene's metadata.
func UpdateSceneMeta(db *store.DB, sceneID string, p ScenePatch) (SceneResult, error) {
	n, err := findTyped(db, sceneID, model.NodeScene)
	if err != nil {
		return SceneResult{}, err
	}
	if p.Perspective != nil {
		switch *p.Perspective {
		case "", model.PerspectiveFirst, model.PerspectiveThird:
		default:
			return SceneResult{}, ErrInvalidPerspective
		}
	}

	var meta model.SceneMeta
	if n.Scene != nil {
		meta = *n.Scene
	}
	prev := meta
	payload := map[string]any{}
	if p.Goal != nil {
		meta.Goal = strings.TrimSpace(*p.Goal)
		payload["goal"] = meta.Goal
	}
	if p.ViewpointCharacterID != nil {
		meta.ViewpointCharacterID = strings.TrimSpace(*p.ViewpointCharacterID)
		payload["viewpointCharacterId"] = meta.ViewpointCharacterID
	}
	if p.Perspective != nil {
		meta.Perspective = *p.Perspective
		payload["perspective"] = string(meta.Perspective)
	}
	switch {
	case p.ClearStoryTime:
		meta.StoryTime = nil
		payload["storyTime"] = nil
	case p.StoryTime != nil:
		st := *p.StoryTime
		meta.StoryTime = &st
		payload["storyTime"] = st
	}
	if p.ActiveCharacterIDs != nil {
		meta.ActiveCharacterIDs = append([]string(nil), p.ActiveCharacterIDs...)
		payload["activeCharacterIds"] = meta.ActiveCharacterIDs
	}
	if p.ActiveContextItemIDs != nil {
		meta.ActiveContextItemIDs = append([]string(nil), p.ActiveContextItemIDs...)
		payload["activeContextItemIds"] = meta.ActiveContextItemIDs
	}

	if reflect.DeepEqual(prev, meta) {
		return SceneResult{Node: n, Changed: false}, nil
	}
	n, err = db.UpdateNode(n.ID, store.NodePatch{Scene: &meta})
	if err != nil {
		return SceneResult{}, err
	}
	return SceneResult{Node: n, Changed: true, EventPayload: payload}, nil
}
