package cli

import (
	"errors"
	"fmt"
	"strings"

	"storyline-cli/internal/dragdrop"
	"storyline-cli/internal/store"

	"github.com/spf13/cobra"
)

func newDragCmd(app *App) *cobra.Command {
	var over, selection string
	var offset, height float64
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "drag <anchor-id>",
		Short: "Replay a drag gesture: start on a row, hover another, drop",
		Long: strings.TrimSpace(`
Replay a pointer drag without a terminal. The drag starts on <anchor-id> (with --select
as the multi-selection), hovers the row of --over at --offset within a row of --height,
and drops. --dry-run only reports the classified drop target.
`),
		Example: strings.TrimSpace(`
  # Drop chapter c2 in the top quarter of chapter c1's row (before c1)
  storyline drag c2 --over c1 --offset 0.1

  # Drag two selected scenes into a chapter
  storyline drag s1 --select s1,s2 --over c3 --offset 0.5
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(over) == "" {
				return writeErr(cmd, errors.New("missing --over"))
			}
			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			var s dragdrop.Session
			if err := s.Start(l.db, strings.TrimSpace(args[0]), trimIDs([]string{selection})); err != nil {
				return writeErr(cmd, withSuggestion(l.db, err))
			}
			label := s.Label(l.db)
			target, ok := s.Over(l.db, strings.TrimSpace(over), offset, height)
			if dryRun {
				s.End()
				data := map[string]any{"dragging": s.Dragging(), "label": label, "target": nil}
				if ok {
					data["target"] = target
				}
				return writeOut(cmd, app, map[string]any{"data": data})
			}
			if !ok {
				s.End()
				if _, exists := l.db.Node(strings.TrimSpace(over)); !exists {
					return writeErr(cmd, withSuggestion(l.db, store.NotFoundError{Kind: "node", ID: strings.TrimSpace(over)}))
				}
				return writeErr(cmd, fmt.Errorf("cannot drop %s on %s: %w", label, strings.TrimSpace(over), dragdrop.ErrNoDropTarget))
			}
			res, err := s.Drop(l.db)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := l.save(cmd); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": res,
				"meta": map[string]any{"label": label},
			})
		},
	}
	cmd.Flags().StringVar(&over, "over", "", "Row the pointer is released over")
	cmd.Flags().Float64Var(&offset, "offset", 0.5, "Pointer offset from the top of the row")
	cmd.Flags().Float64Var(&height, "height", 1, "Row height in the same unit as --offset")
	cmd.Flags().StringVar(&selection, "select", "", "Comma-separated multi-selection")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report the drop target without moving anything")
	return cmd
}
