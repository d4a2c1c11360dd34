package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/company/modkit/internal/exitcodes"
	"github.com/company/modkit/internal/lifecycle"
	"github.com/company/modkit/internal/registry"
	"github.com/company/modkit/internal/ui"
	"github.com/company/modkit/internal/version"
)

func (a *App) newInstallCmd() *cobra.Command {
	var modeFlag string

	cmd := &cobra.Command{
		Use:   "install [module]",
		Short: "Materialize a module and its dependencies into the project",
		Long:  "Resolves the module's dependency closure and materializes each module in order, as a frozen copy or a linked mirror. Without an argument, picks from the catalog interactively.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return a.runInstall(cmd, name, modeFlag)
		},
	}

	cmd.Flags().StringVar(&modeFlag, "mode", "", "materialization mode: copy or link (default from config)")
	return cmd
}

func (a *App) runInstall(cmd *cobra.Command, name, modeFlag string) error {
	return a.withController(func(ctl *lifecycle.Controller, reg *registry.Registry) error {
		mode := a.effectiveMode(modeFlag)
		if !lifecycle.ValidMode(mode) {
			return &ExitError{
				Code:    exitcodes.ConfigError,
				Message: fmt.Sprintf("invalid mode %q: want copy or link", mode),
			}
		}

		if name == "" {
			picked, err := a.pickModule(reg)
			if err != nil {
				return err
			}
			name = picked
		}

		var result *lifecycle.InstallResult
		err := ui.WithSpinner(fmt.Sprintf("Installing %s...", name), func() error {
			var installErr error
			result, installErr = ctl.Install(cmd.Context(), name, mode)
			return installErr
		})

		if result != nil {
			a.reportInstall(result)
		}
		if err != nil {
			if result != nil && len(result.Installed) > 0 {
				return &ExitError{Code: exitcodes.PartialSuccess, Message: err.Error()}
			}
			return err
		}

		if len(result.Plan.Skipped) > 0 {
			return &ExitError{
				Code:    exitcodes.PartialSuccess,
				Message: fmt.Sprintf("%d module(s) skipped due to unresolved dependencies", len(result.Plan.Skipped)),
			}
		}
		return nil
	})
}

// effectiveMode resolves the materialization mode from flag then config.
func (a *App) effectiveMode(flag string) lifecycle.Mode {
	if flag != "" {
		return lifecycle.Mode(flag)
	}
	if a.config != nil && a.config.DefaultMode != "" {
		return lifecycle.Mode(a.config.DefaultMode)
	}
	return lifecycle.ModeCopy
}

// pickModule prompts for a module when none was named on the command line.
func (a *App) pickModule(reg *registry.Registry) (string, error) {
	if ui.IsCI() {
		return "", &ExitError{
			Code:    exitcodes.GeneralError,
			Message: "module name required in non-interactive mode",
		}
	}

	entries := reg.All()
	if len(entries) == 0 {
		return "", &ExitError{
			Code:    exitcodes.StateError,
			Message: "the catalog is empty — run 'modkit extract' to publish a module first",
		}
	}

	options := make([]ui.ModuleOption, 0, len(entries))
	for _, e := range entries {
		options = append(options, ui.ModuleOption{
			Name:     e.Name(),
			Category: e.Category,
			Version:  e.Manifest.Version.String(),
		})
	}
	return ui.SelectModule(options)
}

func (a *App) reportInstall(result *lifecycle.InstallResult) {
	for _, d := range result.Plan.Diagnostics.Drift {
		if d.Delta == version.DeltaMajor {
			a.output.Warning("%s was written against %s %s; the catalog has %s",
				d.Module, d.Dependency, d.Required, d.Registered)
		} else {
			a.output.Warning("%s requires %s %s but the catalog has the older %s",
				d.Module, d.Dependency, d.Required, d.Registered)
		}
	}
	for _, u := range result.Plan.Diagnostics.Unresolved {
		a.output.Warning("unresolved dependency: %s", u)
	}

	for _, name := range result.Installed {
		a.output.Success("installed %s", name)
	}
	for _, name := range result.AlreadyPresent {
		a.output.Info("%s already present, skipped", name)
	}
	for _, name := range result.Plan.Skipped {
		a.output.Warning("skipped %s (unresolved dependencies)", name)
	}
	if result.FailedStep != "" {
		a.output.Error("failed at %s; not attempted: %v", result.FailedStep, result.Remaining)
	}
}
