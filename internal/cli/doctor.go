package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var errDoctorIssuesFound = errors.New("doctor found errors")

func newDoctorCmd(app *App) *cobra.Command {
	var fail bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the stored outline against the hierarchy rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := loadDB(cmd, app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer l.close()

			report := l.db.Check()
			meta := map[string]any{
				"issues":    len(report.Issues),
				"hasErrors": report.HasErrors(),
				"nodes":     l.db.Len(),
			}
			hints := []string{
				"storyline tree --all",
				"storyline nodes move <id> --parent <id> --index <n>",
			}

			if err := writeOut(cmd, app, map[string]any{
				"data":   report,
				"meta":   meta,
				"_hints": hints,
			}); err != nil {
				return err
			}

			if fail && report.HasErrors() {
				return errDoctorIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with non-zero status if errors are found")
	return cmd
}
