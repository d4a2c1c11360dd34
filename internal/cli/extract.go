package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/company/modkit/internal/exitcodes"
	"github.com/company/modkit/internal/lifecycle"
	"github.com/company/modkit/internal/manifest"
	"github.com/company/modkit/internal/registry"
	"github.com/company/modkit/internal/ui"
)

func (a *App) newExtractCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "extract <path>",
		Short: "Publish a local folder as a new catalog module",
		Long:  "Provisions a remote for the folder, pushes its contents, and registers it in the catalog as a linked mirror. A missing module document is generated from defaults.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExtract(cmd, args[0], category)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "catalog category for the new module (required)")
	cmd.MarkFlagRequired("category")
	return cmd
}

func (a *App) runExtract(cmd *cobra.Command, sourcePath, category string) error {
	return a.withController(func(ctl *lifecycle.Controller, _ *registry.Registry) error {
		abs, err := filepath.Abs(sourcePath)
		if err != nil {
			return &ExitError{Code: exitcodes.GeneralError, Message: err.Error()}
		}

		var result *lifecycle.ExtractResult
		err = ui.WithSpinner(fmt.Sprintf("Publishing %s...", filepath.Base(abs)), func() error {
			var extractErr error
			result, extractErr = ctl.ExtractAndPublish(cmd.Context(), abs, category)
			return extractErr
		})
		if err != nil {
			return err
		}

		if result.GeneratedManifest {
			a.output.Info("generated a default %s — fill in the dependency and autoload sections", manifest.DocumentName)
		}
		a.output.Success("published %s to %s", result.Name, result.Remote)
		return nil
	})
}
