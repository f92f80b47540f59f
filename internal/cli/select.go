package cli

import (
	"strings"

	"storyline-cli/internal/store"

	"github.com/spf13/cobra"
)

func newSelectCmd(app *App) *cobra.Command {
	var clear bool
	cmd := &cobra.Command{
		Use:   "select [node-id]",
		Short: "Select a scene (other node types toggle expansion instead)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			selected := false
			id := ""
			switch {
			case clear:
				l.db.ClearSelection()
			case len(args) == 1:
				id = strings.TrimSpace(args[0])
				if _, ok := l.db.Node(id); !ok {
					return writeErr(cmd, withSuggestion(l.db, store.NotFoundError{Kind: "node", ID: id}))
				}
				selected = l.db.SelectNode(id)
			default:
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"selectedId": l.db.SelectedID()}})
			}
			if err := l.save(cmd); err != nil {
				return writeErr(cmd, err)
			}
			data := map[string]any{"selectedId": l.db.SelectedID(), "selected": selected}
			if id != "" && !selected {
				data["expanded"] = l.db.IsExpanded(id)
			}
			return writeOut(cmd, app, map[string]any{"data": data})
		},
	}
	cmd.Flags().BoolVar(&clear, "clear", false, "Clear the selection")
	return cmd
}

func newToggleCmd(app *App) *cobra.Command {
	var expand, collapse bool
	cmd := &cobra.Command{
		Use:   "toggle <node-id>",
		Short: "Expand or collapse a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			id := strings.TrimSpace(args[0])
			if _, ok := l.db.Node(id); !ok {
				return writeErr(cmd, withSuggestion(l.db, store.NotFoundError{Kind: "node", ID: id}))
			}
			switch {
			case expand:
				l.db.SetExpanded(id, true)
			case collapse:
				l.db.SetExpanded(id, false)
			default:
				l.db.ToggleExpanded(id)
			}
			if err := l.save(cmd); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"id": id, "expanded": l.db.IsExpanded(id)}})
		},
	}
	cmd.Flags().BoolVar(&expand, "expand", false, "Force expanded")
	cmd.Flags().BoolVar(&collapse, "collapse", false, "Force collapsed")
	cmd.MarkFlagsMutuallyExclusive("expand", "collapse")
	return cmd
}
