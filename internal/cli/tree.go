package cli

import (
	"storyline-cli/internal/treeorder"

	"github.com/spf13/cobra"
)

type treeRow struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	Depth       int    `json:"depth"`
	HasChildren bool   `json:"hasChildren"`
	Expanded    bool   `json:"expanded"`
	Selected    bool   `json:"selected,omitempty"`
}

func newTreeCmd(app *App) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the outline as flattened rows (collapsed subtrees hidden unless --all)",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			rows := treeorder.Flatten(l.db.Tree(), !all)
			out := make([]treeRow, 0, len(rows))
			for _, r := range rows {
				n, _ := l.db.Node(r.ID)
				out = append(out, treeRow{
					ID:          r.ID,
					Type:        string(n.Type),
					Title:       n.Title,
					Depth:       r.Depth,
					HasChildren: r.HasChildren,
					Expanded:    r.Expanded,
					Selected:    l.db.SelectedID() == r.ID,
				})
			}
			return writeOut(cmd, app, map[string]any{
				"data": out,
				"meta": map[string]any{"rows": len(out), "nodes": l.db.Len()},
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include children of collapsed nodes")
	return cmd
}
