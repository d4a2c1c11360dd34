package lifecycle

import (
	"github.com/company/modkit/internal/fsops"
	"github.com/company/modkit/internal/manifest"
)

// RemoveResult reports a completed removal. AutoloadChecklist lists the
// autoload registrations the consuming project still references; removing
// those touches consumer-owned configuration, so they are reported as a
// checklist rather than applied.
type RemoveResult struct {
	Name              string
	AutoloadChecklist []manifest.Autoload
}

// Remove deletes a module from the registry and from disk. The registry
// blocks removal while other modules still depend on it.
func (c *Controller) Remove(name string) (*RemoveResult, error) {
	e, err := c.reg.Lookup(name)
	if err != nil {
		return nil, err
	}

	checklist := append([]manifest.Autoload(nil), e.Manifest.Autoloads...)
	path := c.modulePath(e)

	if err := c.reg.Remove(name); err != nil {
		return nil, err
	}

	if fsops.Exists(path) {
		if err := fsops.Delete(path); err != nil {
			return nil, &CollaboratorError{Module: name, Phase: "delete module folder", Err: err}
		}
	}

	if err := c.persist(); err != nil {
		return nil, err
	}

	c.log.Debug("removed module", "module", name)
	return &RemoveResult{Name: name, AutoloadChecklist: checklist}, nil
}
