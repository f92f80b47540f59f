package model

import (
	"fmt"
	"strings"
	"time"
)

// NodeType is the closed set of structural levels. Book is the only root type.
type NodeType string

const (
	NodeBook    NodeType = "book"
	NodeArc     NodeType = "arc"
	NodeChapter NodeType = "chapter"
	NodeScene   NodeType = "scene"
)

// NodeTypes lists every type from the root down.
var NodeTypes = []NodeType{NodeBook, NodeArc, NodeChapter, NodeScene}

func (t NodeType) Valid() bool {
	switch t {
	case NodeBook, NodeArc, NodeChapter, NodeScene:
		return true
	default:
		return false
	}
}

// Plural returns the label used for drag previews and summaries ("1 scene", "3 scenes").
func (t NodeType) Plural(n int) string {
	if n == 1 {
		return string(t)
	}
	return string(t) + "s"
}

func ParseNodeType(s string) (NodeType, error) {
	t := NodeType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("invalid node type: %q (expected book|arc|chapter|scene)", s)
	}
	return t, nil
}

type ChapterStatus string

const (
	StatusNone      ChapterStatus = ""
	StatusDraft     ChapterStatus = "draft"
	StatusNeedsWork ChapterStatus = "needs_work"
	StatusReview    ChapterStatus = "review"
	StatusDone      ChapterStatus = "done"
)

// ChapterStatuses lists the settable statuses in workflow order.
var ChapterStatuses = []ChapterStatus{StatusDraft, StatusNeedsWork, StatusReview, StatusDone}

func (s ChapterStatus) Valid() bool {
	switch s {
	case StatusNone, StatusDraft, StatusNeedsWork, StatusReview, StatusDone:
		return true
	default:
		return false
	}
}

func ParseChapterStatus(s string) (ChapterStatus, error) {
	st := ChapterStatus(strings.ToLower(strings.TrimSpace(s)))
	if st == "none" {
		st = StatusNone
	}
	if !st.Valid() {
		return "", fmt.Errorf("invalid status: %q (expected none|draft|needs_work|review|done)", s)
	}
	return st, nil
}

// IncludeMode controls how much of a chapter is fed into full-story context.
type IncludeMode int

const (
	IncludeNone    IncludeMode = 0
	IncludeSummary IncludeMode = 1
	IncludeFull    IncludeMode = 2
)

func (m IncludeMode) Valid() bool { return m >= IncludeNone && m <= IncludeFull }

func (m IncludeMode) String() string {
	switch m {
	case IncludeNone:
		return "none"
	case IncludeSummary:
		return "summary"
	case IncludeFull:
		return "full"
	default:
		return fmt.Sprintf("IncludeMode(%d)", int(m))
	}
}

// ParseIncludeMode accepts 0|1|2 or none|summary|full.
func ParseIncludeMode(s string) (IncludeMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "none":
		return IncludeNone, nil
	case "1", "summary":
		return IncludeSummary, nil
	case "2", "full":
		return IncludeFull, nil
	default:
		return 0, fmt.Errorf("invalid include mode: %q (expected 0|1|2 or none|summary|full)", s)
	}
}

type Perspective string

const (
	PerspectiveFirst Perspective = "FIRST"
	PerspectiveThird Perspective = "THIRD"
)

// SceneMeta is scene-only payload. The engine stores it and never interprets it.
type SceneMeta struct {
	Goal                 string      `json:"goal,omitempty"`
	ViewpointCharacterID string      `json:"viewpointCharacterId,omitempty"`
	Perspective          Perspective `json:"perspective,omitempty"`
	// StoryTime is minutes from the story epoch (negative values are before it).
	StoryTime            *int64      `json:"storyTime,omitempty"`
	ActiveCharacterIDs   []string    `json:"activeCharacterIds,omitempty"`
	ActiveContextItemIDs []string    `json:"activeContextItemIds,omitempty"`
}

type Node struct {
	ID       string   `json:"id"`
	ParentID *string  `json:"parentId,omitempty"`
	Type     NodeType `json:"type"`
	Order    int      `json:"order"`

	Title         string        `json:"title"`
	Summary       string        `json:"summary,omitempty"`
	Status        ChapterStatus `json:"status,omitempty"`
	IncludeInFull IncludeMode   `json:"includeInFull"`
	Scene         *SceneMeta    `json:"scene,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Parent returns the parent id, or "" for a root.
func (n Node) Parent() string {
	if n.ParentID == nil {
		return ""
	}
	return *n.ParentID
}

func (n Node) IsRoot() bool { return n.ParentID == nil || *n.ParentID == "" }

// Clone returns a deep copy so callers never share pointer fields with the store.
func (n Node) Clone() Node {
	out := n
	if n.ParentID != nil {
		pid := *n.ParentID
		out.ParentID = &pid
	}
	if n.Scene != nil {
		sc := *n.Scene
		if n.Scene.StoryTime != nil {
			st := *n.Scene.StoryTime
			sc.StoryTime = &st
		}
		sc.ActiveCharacterIDs = append([]string(nil), n.Scene.ActiveCharacterIDs...)
		sc.ActiveContextItemIDs = append([]string(nil), n.Scene.ActiveContextItemIDs...)
		out.Scene = &sc
	}
	return out
}

// SameParent reports whether two optional parent ids refer to the same sibling group.
func SameParent(a, b *string) bool {
	as, bs := "", ""
	if a != nil {
		as = *a
	}
	if b != nil {
		bs = *b
	}
	return as == bs
}

// TreeNode is one entry of the derived display tree.
type TreeNode struct {
	ID       string     `json:"id"`
	Expanded bool       `json:"expanded"`
	Children []TreeNode `json:"children,omitempty"`
}

type DropPosition string

const (
	DropBefore DropPosition = "before"
	DropAfter  DropPosition = "after"
	DropInside DropPosition = "inside"
)

func ParseDropPosition(s string) (DropPosition, error) {
	switch p := DropPosition(strings.ToLower(strings.TrimSpace(s))); p {
	case DropBefore, DropAfter, DropInside:
		return p, nil
	default:
		return "", fmt.Errorf("invalid drop position: %q (expected before|after|inside)", s)
	}
}

// Commit describes one completed mutation of the node collection.
type Commit struct {
	Seq     uint64    `json:"seq"`
	Kind    string    `json:"kind"`
	At      time.Time `json:"at"`
	Changed []Node    `json:"changed,omitempty"`
	Removed []string  `json:"removed,omitempty"`
}
