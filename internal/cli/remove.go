package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/company/modkit/internal/lifecycle"
	"github.com/company/modkit/internal/registry"
)

func (a *App) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <module>",
		Short: "Remove a module from the project",
		Long:  "Deletes the module's files and its catalog entry. Refused while other cataloged modules still depend on it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRemove(args[0])
		},
	}
}

func (a *App) runRemove(name string) error {
	return a.withController(func(ctl *lifecycle.Controller, _ *registry.Registry) error {
		ok, err := a.confirmFunc()(fmt.Sprintf("Remove %q and delete its files?", name))
		if err != nil {
			return err
		}
		if !ok {
			return lifecycle.ErrConfirmationDeclined
		}

		result, err := ctl.Remove(name)
		if err != nil {
			return err
		}

		a.output.Success("removed %s", result.Name)
		if len(result.AutoloadChecklist) > 0 {
			a.output.Warning("remember to remove these autoload entries from the project settings:")
			items := make([]string, 0, len(result.AutoloadChecklist))
			for _, al := range result.AutoloadChecklist {
				items = append(items, fmt.Sprintf("%s (%s)", al.Name, al.Path))
			}
			a.output.List(items)
		}
		return nil
	})
}
