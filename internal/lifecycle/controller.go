// Package lifecycle drives modules through their state transitions:
// install, update, extract-and-publish, sync, remove. It orchestrates the
// registry, the resolver, and the external collaborators; every multi-step
// operation commits one step at a time so a mid-operation failure leaves
// completed steps durable and reports exactly what did not run.
package lifecycle

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/company/modkit/internal/hosting"
	"github.com/company/modkit/internal/registry"
	"github.com/company/modkit/internal/resolver"
	"github.com/company/modkit/internal/vcs"
)

// Mode selects how a module is materialized.
type Mode string

const (
	// ModeCopy produces a frozen snapshot.
	ModeCopy Mode = "copy"
	// ModeLink produces an editable mirror connected to its remote.
	ModeLink Mode = "link"
)

// ValidMode reports whether m is a known materialization mode.
func ValidMode(m Mode) bool {
	return m == ModeCopy || m == ModeLink
}

// matches reports whether an existing link state was produced by this mode.
func (m Mode) matches(s registry.LinkState) bool {
	switch m {
	case ModeCopy:
		return s == registry.StateCopied
	case ModeLink:
		return s.Linked()
	}
	return false
}

// ConfirmFunc asks the operator a yes/no question. Operations that destroy
// local edits refuse to proceed without an explicit yes.
type ConfirmFunc func(prompt string) (bool, error)

// Options configures a Controller.
type Options struct {
	// Org is the hosting-side organization new remotes are provisioned
	// under.
	Org string
	// Visibility for provisioned remotes.
	Visibility hosting.Visibility
	// StrictMajor blocks on major-version jumps instead of warning.
	StrictMajor bool
	// Confirm handles destructive-operation prompts. Required.
	Confirm ConfirmFunc
	// Logger receives engine-level debug logging. Optional.
	Logger *log.Logger
}

// Controller owns the state machine. It mutates the registry it was given
// and persists through the store after every committed step.
type Controller struct {
	reg   *registry.Registry
	store *registry.Store
	vcs   vcs.Backend
	host  hosting.Backend

	org         string
	visibility  hosting.Visibility
	strictMajor bool
	confirm     ConfirmFunc
	log         *log.Logger
}

// New creates a controller over the given registry snapshot and collaborators.
func New(reg *registry.Registry, store *registry.Store, backend vcs.Backend, host hosting.Backend, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	visibility := opts.Visibility
	if visibility == "" {
		visibility = hosting.VisibilityPrivate
	}
	return &Controller{
		reg:         reg,
		store:       store,
		vcs:         backend,
		host:        host,
		org:         opts.Org,
		visibility:  visibility,
		strictMajor: opts.StrictMajor,
		confirm:     opts.Confirm,
		log:         logger,
	}
}

// snapshot builds the resolver's read-only view of the registry.
func (c *Controller) snapshot() map[string]resolver.ModuleInfo {
	modules := make(map[string]resolver.ModuleInfo, c.reg.Len())
	for _, e := range c.reg.All() {
		modules[e.Name()] = resolver.ModuleInfo{
			Name:         e.Name(),
			Version:      e.Manifest.Version,
			Dependencies: e.Manifest.Dependencies,
		}
	}
	return modules
}

// modulePath returns the on-disk location for an entry.
func (c *Controller) modulePath(e *registry.Entry) string {
	return c.store.ModulePath(e.Category, e.Name())
}

// persist commits the registry's current state to disk. Called after every
// completed step, never rolled back.
func (c *Controller) persist() error {
	return c.store.Save(c.reg)
}
