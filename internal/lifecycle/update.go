package lifecycle

import (
	"context"
	"fmt"

	"github.com/company/modkit/internal/fsops"
	"github.com/company/modkit/internal/registry"
	"github.com/company/modkit/internal/version"
)

// UpdateResult reports the version movement of an update.
type UpdateResult struct {
	Name     string
	Previous version.Version
	Current  version.Version
	Delta    version.Delta

	// MajorWarning is set when the update crossed a major version.
	// Advisory: the transition still completed.
	MajorWarning bool
}

// Update brings a materialized module to the latest mainline revision. For
// linked mirrors this pulls; for frozen copies it re-materializes from
// scratch, which destroys local edits and therefore requires explicit
// confirmation.
func (c *Controller) Update(ctx context.Context, name string) (*UpdateResult, error) {
	e, err := c.reg.Lookup(name)
	if err != nil {
		return nil, err
	}

	switch e.State {
	case registry.StateConflicted:
		return nil, &ConflictedError{Name: name}
	case registry.StateLinkedAttached, registry.StateLinkedDetached:
		return c.updateLinked(ctx, e)
	case registry.StateCopied:
		return c.updateCopied(ctx, e)
	default:
		return nil, &InvalidStateError{Name: name, State: e.State, Op: "update"}
	}
}

func (c *Controller) updateLinked(ctx context.Context, e *registry.Entry) (*UpdateResult, error) {
	name := e.Name()
	path := c.modulePath(e)

	if err := c.vcs.PullLatest(ctx, path); err != nil {
		return nil, &CollaboratorError{Module: name, Phase: "pull latest", Err: err}
	}

	previous, err := c.store.ReloadManifest(e)
	if err != nil {
		return nil, err
	}

	result := &UpdateResult{
		Name:     name,
		Previous: previous,
		Current:  e.Manifest.Version,
		Delta:    version.Classify(previous, e.Manifest.Version),
	}

	if result.Delta == version.DeltaMajor {
		if c.strictMajor {
			return nil, &MajorVersionBlockedError{Name: name, Previous: previous, Current: e.Manifest.Version}
		}
		result.MajorWarning = true
	}

	if rev, revErr := c.vcs.CurrentRevision(path); revErr == nil {
		e.Source.Revision = rev
	}
	e.State = registry.StateLinkedAttached

	if err := c.persist(); err != nil {
		return nil, err
	}

	c.log.Debug("updated linked module", "module", name, "from", previous, "to", e.Manifest.Version)
	return result, nil
}

func (c *Controller) updateCopied(ctx context.Context, e *registry.Entry) (*UpdateResult, error) {
	name := e.Name()
	path := c.modulePath(e)

	// Re-copying is irreversible for local edits; never proceed silently.
	ok, err := c.confirm(fmt.Sprintf(
		"Updating the frozen copy of %q replaces it entirely; local edits will be lost. Continue?", name))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConfirmationDeclined
	}

	previous := e.Manifest.Version

	if err := fsops.Delete(path); err != nil {
		return nil, &CollaboratorError{Module: name, Phase: "remove stale copy", Err: err}
	}
	if err := c.vcs.MaterializeFrozen(ctx, e.Source.Remote, "", path); err != nil {
		return nil, &CollaboratorError{Module: name, Phase: "materialize copy", Err: err}
	}

	if _, err := c.store.ReloadManifest(e); err != nil {
		return nil, err
	}

	result := &UpdateResult{
		Name:     name,
		Previous: previous,
		Current:  e.Manifest.Version,
		Delta:    version.Classify(previous, e.Manifest.Version),
	}
	if result.Delta == version.DeltaMajor {
		if c.strictMajor {
			return nil, &MajorVersionBlockedError{Name: name, Previous: previous, Current: e.Manifest.Version}
		}
		result.MajorWarning = true
	}

	hash, err := fsops.HashDir(path)
	if err != nil {
		return nil, &CollaboratorError{Module: name, Phase: "hash copy", Err: err}
	}
	e.ContentHash = hash
	e.Source.Revision = ""
	e.State = registry.StateCopied

	if err := c.persist(); err != nil {
		return nil, err
	}

	c.log.Debug("re-materialized frozen copy", "module", name, "from", previous, "to", e.Manifest.Version)
	return result, nil
}
