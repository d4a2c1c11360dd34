package lifecycle

import (
	"context"

	"github.com/company/modkit/internal/fsops"
	"github.com/company/modkit/internal/registry"
	"github.com/company/modkit/internal/resolver"
	"github.com/company/modkit/internal/version"
)

// InstallResult reports what an install run did. A failed or cancelled run
// still returns the result so the caller knows which steps committed and
// which remain.
type InstallResult struct {
	Plan           *resolver.Plan
	Installed      []string
	AlreadyPresent []string
	Remaining      []string
	FailedStep     string
}

// Install materializes a module and its dependencies in plan order. Each
// materialization is an independently committed step: a failure partway
// through leaves completed steps in their new state and reports the rest as
// remaining.
func (c *Controller) Install(ctx context.Context, name string, mode Mode) (*InstallResult, error) {
	plan, err := resolver.New(c.snapshot()).Resolve(name)
	if err != nil {
		return nil, err
	}

	if c.strictMajor {
		for _, d := range plan.Diagnostics.Drift {
			if d.Delta == version.DeltaMajor {
				return nil, &MajorVersionBlockedError{Name: d.Dependency, Previous: d.Required, Current: d.Registered}
			}
		}
	}

	// Mode preconditions are checked for the whole plan before anything
	// materializes, so a precondition failure has no partial effect.
	for _, module := range plan.InstallOrder {
		e, lookupErr := c.reg.Lookup(module)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if e.State.Materialized() && !mode.matches(e.State) {
			return nil, &AlreadyInstalledError{Name: module, State: e.State, Mode: mode}
		}
	}

	result := &InstallResult{Plan: plan}
	for i, module := range plan.InstallOrder {
		// Cancellation is honored between steps, never mid-step.
		if ctxErr := ctx.Err(); ctxErr != nil {
			result.Remaining = plan.InstallOrder[i:]
			return result, ctxErr
		}

		e, _ := c.reg.Lookup(module)
		if e.State.Materialized() {
			result.AlreadyPresent = append(result.AlreadyPresent, module)
			continue
		}

		if stepErr := c.materialize(ctx, e, mode); stepErr != nil {
			result.FailedStep = module
			result.Remaining = plan.InstallOrder[i:]
			return result, stepErr
		}
		result.Installed = append(result.Installed, module)

		if persistErr := c.persist(); persistErr != nil {
			result.FailedStep = module
			result.Remaining = plan.InstallOrder[i+1:]
			return result, persistErr
		}
	}

	return result, nil
}

// materialize performs one install step for a single module.
func (c *Controller) materialize(ctx context.Context, e *registry.Entry, mode Mode) error {
	dest := c.modulePath(e)
	name := e.Name()

	// A cataloged entry may already have its manifest document on disk;
	// clear the folder so the backend sees a clean destination.
	if fsops.Exists(dest) {
		if err := fsops.Delete(dest); err != nil {
			return &CollaboratorError{Module: name, Phase: "prepare destination", Err: err}
		}
	}

	switch mode {
	case ModeCopy:
		if err := c.vcs.MaterializeFrozen(ctx, e.Source.Remote, e.Source.Revision, dest); err != nil {
			return &CollaboratorError{Module: name, Phase: "materialize copy", Err: err}
		}
		hash, err := fsops.HashDir(dest)
		if err != nil {
			return &CollaboratorError{Module: name, Phase: "hash copy", Err: err}
		}
		e.ContentHash = hash
		e.State = registry.StateCopied

	case ModeLink:
		if err := c.vcs.MaterializeLinked(ctx, e.Source.Remote, dest); err != nil {
			return &CollaboratorError{Module: name, Phase: "materialize link", Err: err}
		}
		if rev, err := c.vcs.CurrentRevision(dest); err == nil {
			e.Source.Revision = rev
		}
		e.State = registry.StateLinkedAttached
	}

	// The materialized document is now authoritative for this module.
	if _, err := c.store.ReloadManifest(e); err != nil {
		return err
	}

	c.log.Debug("materialized module", "module", name, "mode", mode, "state", e.State)
	return nil
}
