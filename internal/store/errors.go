package store

import (
	"fmt"

	"storyline-cli/internal/model"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func errNodeNotFound(id string) error {
	return NotFoundError{Kind: "node", ID: id}
}

// InvalidHierarchyError reports a child type that does not fit under the requested parent.
// Parent is "" when the node was placed at the root.
type InvalidHierarchyError struct {
	NodeID string
	Child  model.NodeType
	Parent model.NodeType
}

func (e InvalidHierarchyError) Error() string {
	where := "the root"
	if e.Parent != "" {
		where = "a " + string(e.Parent)
	}
	if e.NodeID != "" {
		return fmt.Sprintf("invalid hierarchy: %s %s cannot be placed under %s", e.Child, e.NodeID, where)
	}
	return fmt.Sprintf("invalid hierarchy: a %s cannot be placed under %s", e.Child, where)
}

type CycleDetectedError struct {
	NodeID   string
	ParentID string
}

func (e CycleDetectedError) Error() string {
	return fmt.Sprintf("cycle detected: %s cannot move under its own descendant %s", e.NodeID, e.ParentID)
}

type InvalidPayloadError struct {
	NodeID string
	Field  string
	Reason string
}

func (e InvalidPayloadError) Error() string {
	return fmt.Sprintf("invalid %s for %s: %s", e.Field, e.NodeID, e.Reason)
}
