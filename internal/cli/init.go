package cli

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/company/modkit/internal/config"
	"github.com/company/modkit/internal/exitcodes"
)

func (a *App) newInitCmd() *cobra.Command {
	var defaultMode string
	var strictMajor bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a modkit.yml in the current project",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInit(defaultMode, strictMajor)
		},
	}

	cmd.Flags().StringVar(&defaultMode, "mode", "copy", "default materialization mode (copy or link)")
	cmd.Flags().BoolVar(&strictMajor, "strict-major", false, "treat major version jumps as errors")
	return cmd
}

func (a *App) runInit(defaultMode string, strictMajor bool) error {
	if config.ConfigExists(a.projectDir) {
		return &ExitError{
			Code:    exitcodes.ConfigError,
			Message: config.ConfigFile + " already exists",
		}
	}

	host := a.getHost()
	org := a.getOrg()
	if host == "" || org == "" {
		return &ExitError{
			Code:    exitcodes.ConfigError,
			Message: "init needs --host and --org (or MODKIT_HOST / MODKIT_ORG)",
		}
	}
	if defaultMode != "copy" && defaultMode != "link" {
		return &ExitError{
			Code:    exitcodes.ConfigError,
			Message: "invalid --mode: want copy or link",
		}
	}

	c := &config.Config{
		Version: 1,
		Hosting: config.HostingConfig{
			Host: host,
			Org:  org,
		},
		DefaultMode: defaultMode,
		StrictMajor: strictMajor,
	}
	if err := config.SaveConfig(a.projectDir, c); err != nil {
		return &ExitError{Code: exitcodes.ConfigError, Message: err.Error()}
	}

	if err := os.MkdirAll(filepath.Join(a.projectDir, c.ModulesDir), 0755); err != nil {
		return err
	}

	a.config = c
	a.output.Success("Created %s", config.ConfigFile)
	a.output.Info("Modules will be materialized under %s/", c.ModulesDir)
	return nil
}
