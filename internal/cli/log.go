package cli

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

type logEntry struct {
	Seq     uint64   `json:"seq"`
	Kind    string   `json:"kind"`
	At      string   `json:"at"`
	Ago     string   `json:"ago"`
	Changed []string `json:"changed,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

func newLogCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "log",
		Aliases: []string{"events"},
		Short:   "List committed mutations (newest first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			evs, err := l.st.ListEvents(ctxOf(cmd), limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := make([]logEntry, 0, len(evs))
			for _, ev := range evs {
				out = append(out, logEntry{
					Seq:     ev.Seq,
					Kind:    ev.Kind,
					At:      ev.At.UTC().Format("2006-01-02T15:04:05Z"),
					Ago:     humanize.Time(ev.At),
					Changed: ev.Changed,
					Removed: ev.Removed,
				})
			}
			storeID := ""
			if len(evs) > 0 {
				storeID = evs[0].StoreID
			}
			return writeOut(cmd, app, map[string]any{
				"data": out,
				"meta": map[string]any{"count": len(out), "seq": l.db.Seq(), "storeId": storeID},
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Max events to return (0 = all)")
	return cmd
}
