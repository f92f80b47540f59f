package cli

import (
	"path/filepath"

	"storyline-cli/internal/store"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a story dir",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := resolveDir(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			s := store.Store{Dir: dir}
			existed := s.Exists()
			db, err := s.Load(ctxOf(cmd))
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Save(ctxOf(cmd), db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":        dir,
					"sqlitePath": filepath.Join(dir, "storyline.sqlite"),
					"existed":    existed,
					"nodes":      db.Len(),
				},
			})
		},
	}
	return cmd
}
