package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/company/modkit/internal/lifecycle"
	"github.com/company/modkit/internal/registry"
	"github.com/company/modkit/internal/ui"
	"github.com/company/modkit/internal/version"
)

func (a *App) newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <module>",
		Short: "Bring a materialized module to the latest mainline revision",
		Long:  "Pulls a linked mirror, or re-copies a frozen copy from its remote. Re-copying destroys local edits and asks for confirmation first.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runUpdate(cmd, args[0])
		},
	}
}

func (a *App) runUpdate(cmd *cobra.Command, name string) error {
	return a.withController(func(ctl *lifecycle.Controller, _ *registry.Registry) error {
		var result *lifecycle.UpdateResult
		err := ui.WithSpinner(fmt.Sprintf("Updating %s...", name), func() error {
			var updateErr error
			result, updateErr = ctl.Update(cmd.Context(), name)
			return updateErr
		})
		if err != nil {
			return err
		}

		if result.MajorWarning {
			a.output.Warning("%s jumped a major version (%s → %s); review its changelog before relying on it",
				result.Name, result.Previous, result.Current)
		}

		switch result.Delta {
		case version.DeltaNone:
			a.output.Success("%s is already up to date (%s)", result.Name, result.Current)
		default:
			a.output.Success("updated %s: %s → %s", result.Name, result.Previous, result.Current)
		}
		return nil
	})
}
