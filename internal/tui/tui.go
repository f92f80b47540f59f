package tui

import (
	"context"

	"storyline-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

// Run opens the interactive outline on db. Every commit is persisted to st as it happens.
func Run(ctx context.Context, st store.Store, db *store.DB, opts Options) error {
	applyThemePreference(opts.MarkdownStyle)
	applyColorProfilePreference()

	m := newAppModel(ctx, st, db, opts)
	if ui, err := st.LoadTUIState(ctx); err == nil {
		m.restore(ui)
	}

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx)).Run()
	if fm, ok := final.(appModel); ok {
		fm.close()
		// Best effort: the view state is a convenience.
		_ = st.SaveTUIState(context.WithoutCancel(ctx), fm.tuiState())
	} else {
		m.close()
	}
	return err
}
