package cli

import (
	"github.com/spf13/cobra"

	"github.com/company/modkit/internal/exitcodes"
	"github.com/company/modkit/internal/lifecycle"
	"github.com/company/modkit/internal/registry"
)

func (a *App) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [module]",
		Short: "Show the observed state of every materialized module",
		Long:  "Re-checks each linked mirror against its working tree and mainline revision, and each frozen copy against its recorded content hash.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return a.runStatus(name)
		},
	}
}

func (a *App) runStatus(name string) error {
	return a.withController(func(ctl *lifecycle.Controller, _ *registry.Registry) error {
		rows, err := ctl.Status()
		if err != nil {
			return err
		}
		if name != "" {
			filtered := rows[:0]
			for _, row := range rows {
				if row.Name == name {
					filtered = append(filtered, row)
				}
			}
			if len(filtered) == 0 {
				return &ExitError{
					Code:    exitcodes.StateError,
					Message: "module " + name + " is not in the catalog",
				}
			}
			rows = filtered
		}
		if len(rows) == 0 {
			a.output.Info("no modules materialized yet")
			return nil
		}

		table := make([][]string, 0, len(rows))
		for _, row := range rows {
			edits := "-"
			if row.LocalEdits {
				edits = "yes"
			}
			table = append(table, []string{
				row.Name,
				row.Category,
				row.Version.String(),
				string(row.State),
				edits,
			})
		}
		a.output.Table([]string{"NAME", "CATEGORY", "VERSION", "STATE", "LOCAL EDITS"}, table)

		for _, row := range rows {
			if row.State == registry.StateConflicted {
				a.output.Warning("%s is conflicted — resolve it manually, then edit %s", row.Name, registry.MappingFile)
			}
		}
		return nil
	})
}
