package lifecycle

import (
	"context"
	"fmt"

	"github.com/company/modkit/internal/registry"
	"github.com/company/modkit/internal/vcs"
)

// SyncResult reports a completed sync.
type SyncResult struct {
	Name     string
	Revision string
	// Reattached is set when the mirror was detached and had to be moved
	// back onto the mainline first.
	Reattached bool
}

// Sync commits and pushes a module's local edits. Applicable to modified
// mirrors and to detached mirrors, which are first forced back onto the
// mainline. A remote conflict latches the module into the conflicted state.
func (c *Controller) Sync(ctx context.Context, name string) (*SyncResult, error) {
	e, err := c.reg.Lookup(name)
	if err != nil {
		return nil, err
	}

	switch e.State {
	case registry.StateConflicted:
		return nil, &ConflictedError{Name: name}
	case registry.StateModified, registry.StateLinkedDetached:
		// the states sync exists for
	default:
		return nil, &InvalidStateError{Name: name, State: e.State, Op: "sync"}
	}

	path := c.modulePath(e)
	result := &SyncResult{Name: name}

	if e.State == registry.StateLinkedDetached {
		if err := c.vcs.ForceMainline(path); err != nil {
			// state stays linked-detached; the operator resolves it
			return nil, &DetachedHeadUnresolvedError{Name: name, Err: err}
		}
		result.Reattached = true
	}

	status, err := c.vcs.CommitAndPush(ctx, path, fmt.Sprintf("Sync %s", name))
	if err != nil {
		return nil, &CollaboratorError{Module: name, Phase: "commit and push", Err: err}
	}

	if status == vcs.SyncConflict {
		e.State = registry.StateConflicted
		if persistErr := c.persist(); persistErr != nil {
			return nil, persistErr
		}
		return nil, &SyncConflictError{Name: name}
	}

	if rev, revErr := c.vcs.CurrentRevision(path); revErr == nil {
		e.Source.Revision = rev
		result.Revision = rev
	}
	e.State = registry.StateLinkedAttached

	if err := c.persist(); err != nil {
		return nil, err
	}

	c.log.Debug("synced module", "module", name, "revision", result.Revision)
	return result, nil
}
