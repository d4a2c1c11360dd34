// Package registry is the authoritative catalog of modules: an in-memory
// store owned by one operation at a time, persisted as manifest documents
// plus a YAML mapping file.
package registry

import (
	"fmt"
	"strings"

	"github.com/company/modkit/internal/manifest"
)

// LinkState describes how a module is materialized in the project.
type LinkState string

const (
	// StateCataloged means the module is known but not materialized.
	StateCataloged LinkState = "cataloged"
	// StateCopied means a frozen snapshot lives in the project.
	StateCopied LinkState = "copied"
	// StateLinkedAttached means an editable mirror on the mainline revision.
	StateLinkedAttached LinkState = "linked"
	// StateLinkedDetached means an editable mirror off the mainline revision.
	StateLinkedDetached LinkState = "linked-detached"
	// StateModified means local edits are pending.
	StateModified LinkState = "modified"
	// StateConflicted means a sync failed and needs manual resolution.
	StateConflicted LinkState = "conflicted"
)

// ValidState reports whether s is a known link state.
func ValidState(s LinkState) bool {
	switch s {
	case StateCataloged, StateCopied, StateLinkedAttached,
		StateLinkedDetached, StateModified, StateConflicted:
		return true
	}
	return false
}

// Materialized reports whether the state implies files on disk.
func (s LinkState) Materialized() bool {
	return s != StateCataloged
}

// Linked reports whether the state belongs to a linked mirror.
func (s LinkState) Linked() bool {
	switch s {
	case StateLinkedAttached, StateLinkedDetached, StateModified, StateConflicted:
		return true
	}
	return false
}

// SourceRef locates where a module can be re-fetched from.
type SourceRef struct {
	Remote   string `yaml:"remote"`
	Revision string `yaml:"revision,omitempty"`
}

func (r SourceRef) String() string {
	if r.Revision == "" {
		return r.Remote
	}
	return r.Remote + "@" + r.Revision
}

// Entry is one cataloged module.
type Entry struct {
	Manifest *manifest.Manifest
	Category string
	State    LinkState
	Source   SourceRef

	// ContentHash is the directory hash recorded when a frozen copy was
	// materialized; used to detect local edits in copies.
	ContentHash string
}

// Name returns the module name.
func (e *Entry) Name() string {
	return e.Manifest.Name
}

// DuplicateModuleError indicates a register call for an existing name with a
// different source reference.
type DuplicateModuleError struct {
	Name     string
	Existing SourceRef
}

func (e *DuplicateModuleError) Error() string {
	return fmt.Sprintf("module %q is already registered from %s", e.Name, e.Existing)
}

// NotFoundError indicates a lookup for an unknown module.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("module %q is not in the registry", e.Name)
}

// UnknownModuleError indicates a state update for an unknown module.
type UnknownModuleError struct {
	Name string
}

func (e *UnknownModuleError) Error() string {
	return fmt.Sprintf("unknown module %q", e.Name)
}

// HasDependentsError indicates a removal blocked by registered dependents.
type HasDependentsError struct {
	Name       string
	Dependents []string
}

func (e *HasDependentsError) Error() string {
	return fmt.Sprintf("module %q is required by: %s", e.Name, strings.Join(e.Dependents, ", "))
}

// NameMismatchError indicates a manifest whose declared name disagrees with
// its registry location.
type NameMismatchError struct {
	Declared string
	Path     string
}

func (e *NameMismatchError) Error() string {
	return fmt.Sprintf("manifest declares name %q but lives at %q", e.Declared, e.Path)
}
