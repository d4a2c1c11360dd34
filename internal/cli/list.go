package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/company/modkit/internal/exitcodes"
	"github.com/company/modkit/internal/registry"
)

func (a *App) newListCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the cataloged modules",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runList(category)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "only show modules in this category")
	return cmd
}

// runList is read-only: it loads the catalog without taking the lock.
func (a *App) runList(category string) error {
	if err := a.RequireProject(); err != nil {
		return err
	}

	store := registry.NewStore(a.modulesDir())
	reg, err := store.Load()
	if err != nil {
		return a.asExitError(err)
	}

	entries := reg.ListByCategory(category)
	if len(entries) == 0 {
		if category != "" {
			return &ExitError{
				Code:    exitcodes.GeneralError,
				Message: "no modules in category " + category,
			}
		}
		a.output.Info("the catalog is empty")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		deps := "-"
		if names := e.Manifest.DependencyNames(); len(names) > 0 {
			deps = strings.Join(names, ", ")
		}
		rows = append(rows, []string{
			e.Name(),
			e.Category,
			e.Manifest.Version.String(),
			string(e.State),
			deps,
		})
	}
	a.output.Table([]string{"NAME", "CATEGORY", "VERSION", "STATE", "DEPENDENCIES"}, rows)
	return nil
}
