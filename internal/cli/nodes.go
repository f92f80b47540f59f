package cli

import (
	"errors"
	"fmt"
	"strings"

	"storyline-cli/internal/model"
	"storyline-cli/internal/mutate"
	"storyline-cli/internal/store"

	"github.com/spf13/cobra"
)

func newNodesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "nodes",
		Aliases: []string{"node", "n"},
		Short:   "Create, edit, move and delete outline nodes",
	}
	cmd.AddCommand(newNodesAddCmd(app))
	cmd.AddCommand(newNodesInsertBeforeCmd(app))
	cmd.AddCommand(newNodesUpdateCmd(app))
	cmd.AddCommand(newNodesDeleteCmd(app))
	cmd.AddCommand(newNodesMoveCmd(app))
	cmd.AddCommand(newNodesShiftCmd(app, "up", -1))
	cmd.AddCommand(newNodesShiftCmd(app, "down", 1))
	cmd.AddCommand(newNodesShowCmd(app))
	cmd.AddCommand(newNodesListCmd(app))
	return cmd
}

func newNodesAddCmd(app *App) *cobra.Command {
	var parent, title string
	cmd := &cobra.Command{
		Use:   "add <type>",
		Short: "Append a node as the last child of --parent (or as a root book)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := model.ParseNodeType(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			n, err := l.db.AddNode(parentFlag(parent), t, title)
			if err != nil {
				return writeErr(cmd, withSuggestion(l.db, err))
			}
			if err := l.save(cmd); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": n})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Parent node id (omit for a book)")
	cmd.Flags().StringVar(&title, "title", "", "Title (default: \"New <type>\")")
	return cmd
}

func newNodesInsertBeforeCmd(app *App) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "insert-before <node-id> <type>",
		Short: "Insert a new sibling directly before an existing node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := model.ParseNodeType(args[1])
			if err != nil {
				return writeErr(cmd, err)
			}
			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			n, err := l.db.InsertNodeBefore(strings.TrimSpace(args[0]), t, title)
			if err != nil {
				return writeErr(cmd, withSuggestion(l.db, err))
			}
			if err := l.save(cmd); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": n})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Title (default: \"New <type>\")")
	return cmd
}

func newNodesUpdateCmd(app *App) *cobra.Command {
	var title, summary, status, include string
	cmd := &cobra.Command{
		Use:   "update <node-id>",
		Short: "Edit a node's title, summary, chapter status or include mode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch store.NodePatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("summary") {
				patch.Summary = &summary
			}
			if cmd.Flags().Changed("status") {
				st, err := model.ParseChapterStatus(status)
				if err != nil {
					return writeErr(cmd, err)
				}
				patch.Status = &st
			}
			if cmd.Flags().Changed("include") {
				m, err := model.ParseIncludeMode(include)
				if err != nil {
					return writeErr(cmd, err)
				}
				patch.IncludeInFull = &m
			}

			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			before := l.db.Seq()
			n, err := l.db.UpdateNode(strings.TrimSpace(args[0]), patch)
			if err != nil {
				return writeErr(cmd, withSuggestion(l.db, err))
			}
			if err := l.save(cmd); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": n,
				"meta": map[string]any{"changed": l.db.Seq() != before},
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&summary, "summary", "", "New summary")
	cmd.Flags().StringVar(&status, "status", "", "Chapter status (none|draft|needs_work|review|done)")
	cmd.Flags().StringVar(&include, "include", "", "Chapter include mode (none|summary|full or 0|1|2)")
	return cmd
}

func newNodesDeleteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <node-id>",
		Short: "Delete a node and its whole subtree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			removed, err := l.db.DeleteNode(strings.TrimSpace(args[0]))
			if err != nil {
				return writeErr(cmd, withSuggestion(l.db, err))
			}
			if err := l.save(cmd); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"removed": removed},
				"meta": map[string]any{"count": len(removed)},
			})
		},
	}
	return cmd
}

func newNodesMoveCmd(app *App) *cobra.Command {
	var parent, before, after, inside string
	var index int
	cmd := &cobra.Command{
		Use:   "move <node-id>...",
		Short: "Move nodes to --parent/--index, or relative to another node",
		Long: strings.TrimSpace(`
Move one or more nodes of the same type.

Absolute form: --parent <id>|none --index <n> places the nodes at index n among the
parent's remaining children (out-of-range indexes are clamped).

Relative form: exactly one of --before, --after or --inside <id>. This follows the same
rules as a drag-and-drop, so it refuses any placement the hierarchy does not allow.
`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rel := map[model.DropPosition]string{}
			if before != "" {
				rel[model.DropBefore] = before
			}
			if after != "" {
				rel[model.DropAfter] = after
			}
			if inside != "" {
				rel[model.DropInside] = inside
			}
			absolute := cmd.Flags().Changed("parent") || cmd.Flags().Changed("index")
			switch {
			case len(rel) > 1:
				return writeErr(cmd, errors.New("use only one of --before, --after, --inside"))
			case len(rel) == 1 && absolute:
				return writeErr(cmd, errors.New("--parent/--index cannot be combined with --before/--after/--inside"))
			case len(rel) == 0 && !cmd.Flags().Changed("parent"):
				return writeErr(cmd, errors.New("missing --parent (or --before/--after/--inside)"))
			}

			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			ids := trimIDs(args)
			for pos, ref := range rel {
				res, err := mutate.MoveRelative(l.db, ids, strings.TrimSpace(ref), pos)
				if err != nil {
					return writeErr(cmd, withSuggestion(l.db, err))
				}
				if err := l.save(cmd); err != nil {
					return writeErr(cmd, err)
				}
				return writeOut(cmd, app, map[string]any{"data": res})
			}

			pid := parentFlag(parent)
			if err := l.db.MoveNodes(ids, pid, index); err != nil {
				return writeErr(cmd, withSuggestion(l.db, err))
			}
			if err := l.save(cmd); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": movedNodes(l.db, ids)})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "New parent id (none for a root book)")
	cmd.Flags().IntVar(&index, "index", 0, "Position among the new siblings")
	cmd.Flags().StringVar(&before, "before", "", "Place directly before this node")
	cmd.Flags().StringVar(&after, "after", "", "Place directly after this node")
	cmd.Flags().StringVar(&inside, "inside", "", "Append as the last children of this node")
	return cmd
}

func newNodesShiftCmd(app *App, name string, delta int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name + " <node-id>",
		Short: fmt.Sprintf("Swap a node with its %s sibling", map[int]string{-1: "previous", 1: "next"}[delta]),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			id := strings.TrimSpace(args[0])
			var moved bool
			if delta < 0 {
				moved, err = l.db.MoveUp(id)
			} else {
				moved, err = l.db.MoveDown(id)
			}
			if err != nil {
				return writeErr(cmd, withSuggestion(l.db, err))
			}
			if err := l.save(cmd); err != nil {
				return writeErr(cmd, err)
			}
			n, _ := l.db.Node(id)
			return writeOut(cmd, app, map[string]any{
				"data": n,
				"meta": map[string]any{"moved": moved},
			})
		},
	}
	return cmd
}

func newNodesShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <node-id>",
		Short: "Show a node with its children and path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			id := strings.TrimSpace(args[0])
			n, ok := l.db.Node(id)
			if !ok {
				return writeErr(cmd, withSuggestion(l.db, store.NotFoundError{Kind: "node", ID: id}))
			}
			children := l.db.ChildrenOf(n.ID)
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"node":     n,
					"children": children,
					"path":     pathOf(l.db, n),
				},
				"meta": map[string]any{
					"children": len(children),
					"expanded": l.db.IsExpanded(n.ID),
					"selected": l.db.SelectedID() == n.ID,
				},
			})
		},
	}
	return cmd
}

func newNodesListCmd(app *App) *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List nodes in reading order",
		RunE: func(cmd *cobra.Command, args []string) error {
			var want model.NodeType
			if typ != "" {
				t, err := model.ParseNodeType(typ)
				if err != nil {
					return writeErr(cmd, err)
				}
				want = t
			}
			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			out := []model.Node{}
			for _, n := range l.db.Nodes() {
				if want != "" && n.Type != want {
					continue
				}
				out = append(out, n)
			}
			return writeOut(cmd, app, map[string]any{
				"data": out,
				"meta": map[string]any{"count": len(out)},
			})
		},
	}
	cmd.Flags().StringVar(&typ, "type", "", "Only list nodes of this type")
	return cmd
}

// parentFlag maps "" and "none" to a root placement.
func parentFlag(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return nil
	}
	return &s
}

func trimIDs(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		for _, id := range strings.Split(a, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

func movedNodes(db *store.DB, ids []string) []model.Node {
	out := make([]model.Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := db.Node(id); ok {
			out = append(out, n)
		}
	}
	return out
}

// pathOf returns the ancestors of n from the root down, excluding n.
func pathOf(db *store.DB, n model.Node) []map[string]any {
	var rev []model.Node
	seen := map[string]bool{n.ID: true}
	cur := n
	for !cur.IsRoot() {
		p, ok := db.Node(cur.Parent())
		if !ok || seen[p.ID] {
			break
		}
		seen[p.ID] = true
		rev = append(rev, p)
		cur = p
	}
	out := make([]map[string]any, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		out = append(out, map[string]any{"id": rev[i].ID, "type": rev[i].Type, "title": rev[i].Title})
	}
	return out
}
