package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"storyline-cli/internal/store"

	"github.com/spf13/cobra"
)

func newBackupCmd(app *App) *cobra.Command {
	var to string
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write every node to a JSONL file (one node per line, reading order)",
		RunE: func(cmd *cobra.Command, args []string) error {
			to = strings.TrimSpace(to)
			if to == "" {
				return writeErr(cmd, errors.New("missing --to"))
			}
			if !overwrite {
				if _, err := os.Stat(to); err == nil {
					return writeErr(cmd, errors.New("file exists (use --overwrite): "+to))
				}
			}
			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			if err := store.WriteNodesJSONL(to, l.db); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"written": to, "nodes": l.db.Len()},
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Destination file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite an existing file")
	return cmd
}

func newRestoreCmd(app *App) *cobra.Command {
	var from string
	var force bool
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace the whole outline with a JSONL backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			from = strings.TrimSpace(from)
			if from == "" {
				return writeErr(cmd, errors.New("missing --from"))
			}
			nodes, err := store.ReadNodesJSONL(from)
			if err != nil {
				return writeErr(cmd, err)
			}
			report, err := store.CheckNodes(nodes)
			if err != nil {
				return writeErr(cmd, err)
			}
			if report.HasErrors() && !force {
				return writeErr(cmd, fmt.Errorf("backup has %d issue(s); run with --force to restore anyway", len(report.Issues)))
			}

			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			before := l.db.Len()
			if err := l.db.ReplaceNodes(nodes); err != nil {
				return writeErr(cmd, err)
			}
			if err := l.save(cmd); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"restored": l.db.Len(), "replaced": before},
				"meta": map[string]any{"issues": len(report.Issues)},
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "Backup file written by `storyline backup`")
	cmd.Flags().BoolVar(&force, "force", false, "Restore even when the backup breaks the hierarchy rules")
	return cmd
}
