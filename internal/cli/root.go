package cli

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/company/modkit/internal/config"
	"github.com/company/modkit/internal/exitcodes"
	"github.com/company/modkit/internal/hosting"
	"github.com/company/modkit/internal/lifecycle"
	"github.com/company/modkit/internal/registry"
	"github.com/company/modkit/internal/resolver"
	"github.com/company/modkit/internal/ui"
	"github.com/company/modkit/internal/vcs"
)

// App is the dependency container for all CLI commands.
type App struct {
	rootCmd *cobra.Command
	version string
	commit  string
	date    string
	config  *config.Config
	output  *ui.Output
	logger  *log.Logger

	projectDir string
	host       string
	org        string
	token      string
	debug      bool
	assumeYes  bool
}

// NewApp creates the root command and registers all subcommands.
func NewApp(version, commit, date string) *App {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		output:  ui.NewOutput(),
	}

	root := &cobra.Command{
		Use:   "modkit",
		Short: "Module manager for game projects",
		Long:  "Catalogs reusable game modules and materializes them into projects as frozen copies or linked mirrors.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if envHost := os.Getenv("MODKIT_HOST"); envHost != "" && app.host == "" {
				app.host = envHost
			}
			if envOrg := os.Getenv("MODKIT_ORG"); envOrg != "" && app.org == "" {
				app.org = envOrg
			}
			if envToken := os.Getenv("MODKIT_TOKEN"); envToken != "" && app.token == "" {
				app.token = envToken
			}
			if os.Getenv("MODKIT_DEBUG") != "" {
				app.debug = true
			}
			if os.Getenv("MODKIT_NO_COLOR") != "" || os.Getenv("NO_COLOR") != "" {
				app.output.SetNoColor(true)
			}

			app.logger = log.New(os.Stderr)
			if app.debug {
				app.logger.SetLevel(log.DebugLevel)
			} else {
				app.logger.SetLevel(log.WarnLevel)
			}

			// Eagerly load config; commands that need it call RequireProject
			_ = app.LoadProjectConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&app.projectDir, "dir", ".", "project directory")
	root.PersistentFlags().StringVar(&app.host, "host", "", "hosting provider URL (overrides MODKIT_HOST)")
	root.PersistentFlags().StringVar(&app.org, "org", "", "hosting organization (overrides MODKIT_ORG)")
	root.PersistentFlags().StringVar(&app.token, "token", "", "auth token (overrides MODKIT_TOKEN)")
	root.PersistentFlags().BoolVar(&app.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&app.assumeYes, "yes", "y", false, "assume yes on confirmation prompts")
	root.PersistentFlags().Bool("no-color", false, "disable colored output")

	root.AddCommand(
		app.newInitCmd(),
		app.newInstallCmd(),
		app.newUpdateCmd(),
		app.newExtractCmd(),
		app.newSyncCmd(),
		app.newListCmd(),
		app.newStatusCmd(),
		app.newRemoveCmd(),
		app.newVersionCmd(),
	)

	app.rootCmd = root
	return app
}

// Execute runs the root command.
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

// LoadProjectConfig loads the config file. Returns nil error when no config
// is found.
func (a *App) LoadProjectConfig() error {
	if !config.ConfigExists(a.projectDir) {
		return nil
	}
	c, err := config.LoadConfig(a.projectDir)
	if err != nil {
		return err
	}
	a.config = c
	return nil
}

// RequireProject loads config and returns an error if it doesn't exist.
func (a *App) RequireProject() error {
	if a.config == nil {
		if err := a.LoadProjectConfig(); err != nil {
			return &ExitError{Code: exitcodes.ConfigError, Message: err.Error()}
		}
	}
	if a.config == nil {
		return &ExitError{
			Code:    exitcodes.ConfigError,
			Message: "no " + config.ConfigFile + " found — run 'modkit init' first",
		}
	}
	return nil
}

// modulesDir returns the effective modules directory.
func (a *App) modulesDir() string {
	dir := config.DefaultModulesDir
	if a.config != nil && a.config.ModulesDir != "" {
		dir = a.config.ModulesDir
	}
	return filepath.Join(a.projectDir, dir)
}

// getHost returns the effective hosting provider URL.
func (a *App) getHost() string {
	if a.host != "" {
		return a.host
	}
	if a.config != nil {
		return a.config.Hosting.Host
	}
	return ""
}

// getOrg returns the effective hosting organization.
func (a *App) getOrg() string {
	if a.org != "" {
		return a.org
	}
	if a.config != nil {
		return a.config.Hosting.Org
	}
	return ""
}

// newHostingClient creates a hosting client with the current settings.
func (a *App) newHostingClient() (*hosting.Client, error) {
	host := a.getHost()
	if host == "" {
		return nil, &ExitError{
			Code:    exitcodes.ConfigError,
			Message: "hosting host not set — use --host flag or MODKIT_HOST env var",
		}
	}
	opts := []hosting.Option{}
	if a.token != "" {
		opts = append(opts, hosting.WithToken(a.token))
	}
	return hosting.NewClient(host, opts...), nil
}

// confirmFunc builds the confirmation prompt handler. --yes and CI runs
// auto-approve; anything else asks interactively.
func (a *App) confirmFunc() lifecycle.ConfirmFunc {
	if a.assumeYes || ui.IsCI() {
		return func(string) (bool, error) { return true, nil }
	}
	return ui.Confirm
}

// withController acquires the catalog lock, loads the registry, and hands a
// ready controller to fn. The lock is held for the whole operation; the
// controller persists its own committed steps.
func (a *App) withController(fn func(ctl *lifecycle.Controller, reg *registry.Registry) error) error {
	if err := a.RequireProject(); err != nil {
		return err
	}

	host, err := a.newHostingClient()
	if err != nil {
		return err
	}

	store := registry.NewStore(a.modulesDir())
	lock, err := store.Acquire()
	if err != nil {
		return &ExitError{
			Code:    exitcodes.StateError,
			Message: "could not lock the module catalog (another modkit running?): " + err.Error(),
		}
	}
	defer lock.Release()

	reg, err := store.Load()
	if err != nil {
		return a.asExitError(err)
	}

	ctl := lifecycle.New(reg, store, vcs.NewGit(), host, lifecycle.Options{
		Org:         a.getOrg(),
		Visibility:  hosting.Visibility(a.config.Hosting.Visibility),
		StrictMajor: a.config.StrictMajor,
		Confirm:     a.confirmFunc(),
		Logger:      a.logger,
	})

	return a.asExitError(fn(ctl, reg))
}

// asExitError maps domain errors onto the stable exit codes.
func (a *App) asExitError(err error) error {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	code := exitcodes.GeneralError
	var (
		cyclic     *resolver.CyclicDependencyError
		missing    *resolver.MissingModuleError
		collab     *lifecycle.CollaboratorError
		invalid    *lifecycle.InvalidStateError
		already    *lifecycle.AlreadyInstalledError
		detached   *lifecycle.DetachedHeadUnresolvedError
		remote     *lifecycle.RemoteAlreadyExistsError
		blocked    *lifecycle.MajorVersionBlockedError
		conflicted *lifecycle.ConflictedError
		syncConf   *lifecycle.SyncConflictError
		dependents *registry.HasDependentsError
		unknown    *registry.UnknownModuleError
		notFound   *registry.NotFoundError
	)
	switch {
	case errors.As(err, &cyclic), errors.As(err, &missing):
		code = exitcodes.FatalResolution
	case errors.As(err, &conflicted), errors.As(err, &syncConf):
		code = exitcodes.ConflictError
	case errors.As(err, &collab):
		code = exitcodes.CollaboratorFailure
	case errors.As(err, &invalid), errors.As(err, &already),
		errors.As(err, &detached), errors.As(err, &remote),
		errors.As(err, &blocked), errors.As(err, &dependents),
		errors.As(err, &unknown), errors.As(err, &notFound):
		code = exitcodes.StateError
	case errors.Is(err, lifecycle.ErrConfirmationDeclined):
		code = exitcodes.GeneralError
	}

	return &ExitError{Code: code, Message: err.Error()}
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			a.output.Info("modkit %s (commit: %s, built: %s)", a.version, a.commit, a.date)
		},
	}
}

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}
