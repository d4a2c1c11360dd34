package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/company/modkit/internal/lifecycle"
	"github.com/company/modkit/internal/registry"
	"github.com/company/modkit/internal/ui"
)

func (a *App) newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync <module>",
		Short: "Push local edits of a linked module back to its remote",
		Long:  "Commits and pushes pending edits of a linked mirror. A mirror off the mainline revision is reattached first; if that cannot be done safely the module is left untouched for manual resolution.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSync(cmd, args[0])
		},
	}
}

func (a *App) runSync(cmd *cobra.Command, name string) error {
	return a.withController(func(ctl *lifecycle.Controller, _ *registry.Registry) error {
		var result *lifecycle.SyncResult
		err := ui.WithSpinner(fmt.Sprintf("Syncing %s...", name), func() error {
			var syncErr error
			result, syncErr = ctl.Sync(cmd.Context(), name)
			return syncErr
		})
		if err != nil {
			return err
		}

		if result.Reattached {
			a.output.Info("%s was reattached to the mainline revision", name)
		}
		a.output.Success("synced %s (now at %s)", result.Name, result.Revision)
		return nil
	})
}
