package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storyline-cli/internal/config"
	"storyline-cli/internal/format"
	"storyline-cli/internal/store"
	"storyline-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir           string
	PrettyJSON    bool
	Format        string
	MarkdownStyle string

	cfgErr error
}

func NewRootCmd() *cobra.Command {
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg = config.Config{Format: "json", MarkdownStyle: "auto"}
	}
	app := &App{MarkdownStyle: cfg.MarkdownStyle, cfgErr: cfgErr}

	cmd := &cobra.Command{
		Use:          "storyline",
		Short:        "Storyline: book, arc, chapter and scene outlines (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive outline
  storyline

  # Build a skeleton
  storyline init
  storyline nodes add book --title "The Ledger"
  storyline nodes add arc --parent <book-id>

  # Move a chapter in front of another one
  storyline nodes move <chapter-id> --before <other-chapter-id>
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if app.cfgErr != nil {
			return writeErr(cmd, app.cfgErr)
		}
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", cfg.Dir, "Path to the story dir (default: nearest .storyline/ upwards, else ./.storyline)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", cfg.Pretty, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", cfg.Format, "Output format (json|edn)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newNodesCmd(app))
	cmd.AddCommand(newTreeCmd(app))
	cmd.AddCommand(newDragCmd(app))
	cmd.AddCommand(newSelectCmd(app))
	cmd.AddCommand(newToggleCmd(app))
	cmd.AddCommand(newChaptersCmd(app))
	cmd.AddCommand(newSceneCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newLogCmd(app))
	cmd.AddCommand(newBackupCmd(app))
	cmd.AddCommand(newRestoreCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	l, err := loadDB(cmd, app)
	if err != nil {
		return writeErr(cmd, err)
	}
	// The TUI records and persists its own commits.
	l.close()
	return tui.Run(ctxOf(cmd), l.st, l.db, tui.Options{MarkdownStyle: app.MarkdownStyle})
}

var errNoStory = errors.New("no story found (run `storyline init` or pass --dir)")

// loaded is one command's view of the story: the DB, where it lives, and the commits made
// since it was loaded.
type loaded struct {
	db          *store.DB
	st          store.Store
	rec         *store.Recorder
	unsubscribe func()
}

func resolveDir(app *App) (string, error) {
	if app.Dir != "" {
		return app.Dir, nil
	}
	d, err := config.Config{}.ResolveDir()
	if err != nil {
		return "", err
	}
	app.Dir = d
	return d, nil
}

func loadDB(cmd *cobra.Command, app *App) (*loaded, error) {
	dir, err := resolveDir(app)
	if err != nil {
		return nil, err
	}
	s := store.Store{Dir: dir}
	if !s.Exists() {
		return nil, errNoStory
	}
	db, err := s.Load(ctxOf(cmd))
	if err != nil {
		return nil, err
	}
	rec := &store.Recorder{}
	return &loaded{db: db, st: s, rec: rec, unsubscribe: db.Subscribe(rec.Observe)}, nil
}

// save persists the collection, the view state and every pending commit in one transaction.
func (l *loaded) save(cmd *cobra.Command) error {
	return l.st.Persist(ctxOf(cmd), l.db, l.rec.Drain())
}

func (l *loaded) close() {
	if l.unsubscribe != nil {
		l.unsubscribe()
	}
}

func ctxOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
