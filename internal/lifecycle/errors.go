package lifecycle

import (
	"errors"
	"fmt"

	"github.com/company/modkit/internal/registry"
	"github.com/company/modkit/internal/version"
)

// ErrConfirmationDeclined means the operator answered no to a destructive
// prompt. The operation makes no changes.
var ErrConfirmationDeclined = errors.New("confirmation declined")

// AlreadyInstalledError indicates a module is materialized with a different
// mode than requested. Resolved only by explicit removal first.
type AlreadyInstalledError struct {
	Name  string
	State registry.LinkState
	Mode  Mode
}

func (e *AlreadyInstalledError) Error() string {
	return fmt.Sprintf("module %q is already materialized as %s; remove it before installing with mode %s",
		e.Name, e.State, e.Mode)
}

// InvalidStateError indicates an operation was requested on a module whose
// state does not allow it.
type InvalidStateError struct {
	Name  string
	State registry.LinkState
	Op    string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s module %q in state %s", e.Op, e.Name, e.State)
}

// ConflictedError indicates the module is latched in the conflicted state;
// the engine refuses automated transitions until it is manually cleared.
type ConflictedError struct {
	Name string
}

func (e *ConflictedError) Error() string {
	return fmt.Sprintf("module %q has an unresolved sync conflict; resolve it manually first", e.Name)
}

// DetachedHeadUnresolvedError indicates a detached mirror could not be moved
// back onto the mainline. The state stays linked-detached.
type DetachedHeadUnresolvedError struct {
	Name string
	Err  error
}

func (e *DetachedHeadUnresolvedError) Error() string {
	return fmt.Sprintf("module %q is detached and cannot fast-forward to mainline: %v", e.Name, e.Err)
}

func (e *DetachedHeadUnresolvedError) Unwrap() error { return e.Err }

// RemoteAlreadyExistsError indicates extract-and-publish found an existing
// remote under the target name. No registry entry is created.
type RemoteAlreadyExistsError struct {
	FullName string
}

func (e *RemoteAlreadyExistsError) Error() string {
	return fmt.Sprintf("remote %q already exists", e.FullName)
}

// MajorVersionBlockedError is returned in strict mode when an operation
// would cross a major-version boundary.
type MajorVersionBlockedError struct {
	Name     string
	Previous version.Version
	Current  version.Version
}

func (e *MajorVersionBlockedError) Error() string {
	return fmt.Sprintf("module %q jumps from %s to %s across a major version (strict mode)",
		e.Name, e.Previous, e.Current)
}

// CollaboratorError wraps an external-call failure with the module and phase
// it happened in, so a caller can resume from the exact step.
type CollaboratorError struct {
	Module string
	Phase  string
	Err    error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s failed for module %q: %v", e.Phase, e.Module, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// SyncConflictError indicates a sync hit a remote conflict; the module has
// transitioned to the conflicted state.
type SyncConflictError struct {
	Name string
}

func (e *SyncConflictError) Error() string {
	return fmt.Sprintf("sync of module %q hit a remote conflict; manual resolution required", e.Name)
}
