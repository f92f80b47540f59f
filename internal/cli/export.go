package cli

import (
	"fmt"
	"strings"

	"storyline-cli/internal/publish"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var render, asHTML, summaries, meta, respectInclude, overwrite bool
	var to string
	var width int
	cmd := &cobra.Command{
		Use:   "export [node-id]",
		Short: "Export the outline (or one subtree) as markdown or HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			root := ""
			if len(args) == 1 {
				root = strings.TrimSpace(args[0])
			}
			opts := publish.RenderOptions{Summaries: summaries, Meta: meta, RespectInclude: respectInclude}

			if strings.TrimSpace(to) != "" {
				res, err := publish.WriteTree(l.db, root, to, publish.WriteOptions{Render: opts, Overwrite: overwrite, HTML: asHTML})
				if err != nil {
					return writeErr(cmd, withSuggestion(l.db, err))
				}
				return writeOut(cmd, app, map[string]any{"data": res})
			}

			if asHTML {
				page, err := publish.RenderTreeHTML(l.db, root, opts)
				if err != nil {
					return writeErr(cmd, withSuggestion(l.db, err))
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), page)
				return err
			}

			md, err := publish.RenderTreeMarkdown(l.db, root, opts)
			if err != nil {
				return writeErr(cmd, withSuggestion(l.db, err))
			}
			if render {
				md = publish.RenderTerminal(md, width, app.MarkdownStyle) + "\n"
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), md)
			return err
		},
	}
	cmd.Flags().BoolVar(&render, "render", false, "Render for the terminal instead of printing raw markdown")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Write a standalone HTML page (implied by a .html --to path)")
	cmd.MarkFlagsMutuallyExclusive("render", "html")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --render")
	cmd.Flags().BoolVar(&summaries, "summaries", true, "Include node summaries")
	cmd.Flags().BoolVar(&meta, "meta", false, "Include chapter status and scene fields")
	cmd.Flags().BoolVar(&respectInclude, "respect-include", false, "Filter chapters by includeInFull")
	cmd.Flags().StringVar(&to, "to", "", "Write to this file instead of stdout")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite an existing --to file")
	return cmd
}
