package lifecycle

import (
	"github.com/company/modkit/internal/fsops"
	"github.com/company/modkit/internal/registry"
	"github.com/company/modkit/internal/version"
)

// ModuleStatus is one row of a status report.
type ModuleStatus struct {
	Name     string
	Category string
	Version  version.Version
	State    registry.LinkState
	// LocalEdits is set when a frozen copy's content no longer matches
	// the hash recorded at materialization.
	LocalEdits bool
}

// Status inspects every cataloged module and refreshes the link states the
// collaborators can observe: a dirty linked mirror becomes modified, an
// off-mainline mirror becomes linked-detached. The conflicted state is never
// cleared automatically.
func (c *Controller) Status() ([]ModuleStatus, error) {
	var rows []ModuleStatus
	changed := false

	for _, e := range c.reg.All() {
		row := ModuleStatus{
			Name:     e.Name(),
			Category: e.Category,
			Version:  e.Manifest.Version,
			State:    e.State,
		}

		switch e.State {
		case registry.StateLinkedAttached, registry.StateLinkedDetached, registry.StateModified:
			state, err := c.observeLinked(e)
			if err != nil {
				return nil, &CollaboratorError{Module: e.Name(), Phase: "inspect mirror", Err: err}
			}
			if state != e.State {
				e.State = state
				changed = true
			}
			row.State = state

		case registry.StateCopied:
			if e.ContentHash != "" && fsops.Exists(c.modulePath(e)) {
				hash, err := fsops.HashDir(c.modulePath(e))
				if err != nil {
					return nil, &CollaboratorError{Module: e.Name(), Phase: "hash copy", Err: err}
				}
				row.LocalEdits = hash != e.ContentHash
			}
		}

		rows = append(rows, row)
	}

	if changed {
		if err := c.persist(); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// observeLinked derives the current state of a linked mirror from the
// working tree.
func (c *Controller) observeLinked(e *registry.Entry) (registry.LinkState, error) {
	path := c.modulePath(e)

	dirty, err := c.vcs.WorkingTreeDirty(path)
	if err != nil {
		return e.State, err
	}
	if dirty {
		return registry.StateModified, nil
	}

	mainline, err := c.vcs.CurrentRevisionIsMainline(path)
	if err != nil {
		return e.State, err
	}
	if !mainline {
		return registry.StateLinkedDetached, nil
	}
	return registry.StateLinkedAttached, nil
}
