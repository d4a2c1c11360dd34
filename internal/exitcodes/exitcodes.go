// Package exitcodes defines the process exit codes used by the modkit CLI.
// Automation drives modkit from scripts, so each failure class gets a stable
// code that callers can branch on.
package exitcodes

const (
	// Success means the operation completed with no diagnostics.
	Success = 0

	// GeneralError covers unexpected internal failures.
	GeneralError = 1

	// ConfigError means the project config is missing or invalid.
	ConfigError = 2

	// PartialSuccess means the operation completed for some modules but
	// skipped others (unresolved dependencies, step failures).
	PartialSuccess = 3

	// FatalResolution means dependency resolution aborted (cyclic graph).
	FatalResolution = 4

	// CollaboratorFailure means an external call (git, hosting API,
	// filesystem) failed mid-operation.
	CollaboratorFailure = 5

	// StateError means a local precondition failed (unknown module,
	// already installed, has dependents, unresolved detached head).
	StateError = 6

	// ConflictError means a module is in the conflicted state and needs
	// manual resolution before further automated transitions.
	ConflictError = 7
)
