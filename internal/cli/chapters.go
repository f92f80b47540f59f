package cli

import (
	"errors"
	"strings"

	"storyline-cli/internal/model"
	"storyline-cli/internal/mutate"

	"github.com/spf13/cobra"
)

func newChaptersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "chapters",
		Aliases: []string{"chapter"},
		Short:   "Chapter status and full-context inclusion",
	}
	cmd.AddCommand(newChaptersIncludeCmd(app))
	cmd.AddCommand(newChaptersCycleIncludeCmd(app))
	cmd.AddCommand(newChaptersStatusCmd(app))
	cmd.AddCommand(newChaptersPrecedingCmd(app))
	return cmd
}

func newChaptersIncludeCmd(app *App) *cobra.Command {
	var value string
	var preceding bool
	cmd := &cobra.Command{
		Use:   "include <node-id>",
		Short: "Set includeInFull on a chapter, or on every chapter before a node (--preceding)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(value) == "" {
				return writeErr(cmd, errors.New("missing --value"))
			}
			mode, err := model.ParseIncludeMode(value)
			if err != nil {
				return writeErr(cmd, err)
			}
			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			id := strings.TrimSpace(args[0])
			if preceding {
				res, err := mutate.SetIncludeForPrecedingChapters(l.db, id, mode)
				if err != nil {
					return writeErr(cmd, withSuggestion(l.db, err))
				}
				if err := l.save(cmd); err != nil {
					return writeErr(cmd, err)
				}
				ids := res.ChapterIDs
				if ids == nil {
					ids = []string{}
				}
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{"chapterIds": ids, "includeInFull": int(mode)},
					"meta": map[string]any{"changed": res.Changed, "count": len(ids)},
				})
			}

			res, err := mutate.SetIncludeInFull(l.db, id, mode)
			if err != nil {
				return writeErr(cmd, withSuggestion(l.db, err))
			}
			if err := l.save(cmd); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": res.Node,
				"meta": map[string]any{"changed": res.Changed},
			})
		},
	}
	cmd.Flags().StringVar(&value, "value", "", "Include mode (none|summary|full or 0|1|2)")
	cmd.Flags().BoolVar(&preceding, "preceding", false, "Apply to every chapter before <node-id> in reading order")
	return cmd
}

func newChaptersCycleIncludeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cycle-include <chapter-id>",
		Short: "Step includeInFull: summary -> full -> none -> summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			res, err := mutate.CycleIncludeInFull(l.db, strings.TrimSpace(args[0]))
			if err != nil {
				return writeErr(cmd, withSuggestion(l.db, err))
			}
			if err := l.save(cmd); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": res.Node,
				"meta": res.EventPayload,
			})
		},
	}
	return cmd
}

func newChaptersStatusCmd(app *App) *cobra.Command {
	var next bool
	cmd := &cobra.Command{
		Use:   "status <chapter-id> [none|draft|needs_work|review|done]",
		Short: "Set a chapter's workflow status (or --next to advance it)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if next == (len(args) == 2) {
				return writeErr(cmd, errors.New("pass a status or --next"))
			}
			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			id := strings.TrimSpace(args[0])
			var status model.ChapterStatus
			if next {
				n, ok := l.db.Node(id)
				if ok {
					status = mutate.NextStatus(n.Status)
				}
			} else {
				status, err = model.ParseChapterStatus(args[1])
				if err != nil {
					return writeErr(cmd, err)
				}
			}
			res, err := mutate.SetChapterStatus(l.db, id, status)
			if err != nil {
				return writeErr(cmd, withSuggestion(l.db, err))
			}
			if err := l.save(cmd); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": res.Node,
				"meta": map[string]any{"changed": res.Changed},
			})
		},
	}
	cmd.Flags().BoolVar(&next, "next", false, "Advance to the next status")
	return cmd
}

func newChaptersPrecedingCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preceding <node-id>",
		Short: "List the chapters before a node in reading order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			chapters, err := l.db.PrecedingChapters(strings.TrimSpace(args[0]))
			if err != nil {
				return writeErr(cmd, withSuggestion(l.db, err))
			}
			if chapters == nil {
				chapters = []model.Node{}
			}
			return writeOut(cmd, app, map[string]any{
				"data": chapters,
				"meta": map[string]any{"count": len(chapters)},
			})
		},
	}
	return cmd
}
