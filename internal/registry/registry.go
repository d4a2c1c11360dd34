package registry

import (
	"sort"

	"github.com/company/modkit/internal/manifest"
)

// Registry maps module names to entries. It is a dumb store: state
// transition legality is the lifecycle controller's job, and dependency
// analysis is the resolver's. The registry only guards its own invariants
// (unique names, no removal while dependents remain).
type Registry struct {
	entries map[string]*Entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Register adds a module to the catalog in the Cataloged state. Registering
// an existing name with the identical source reference is idempotent; a
// different reference fails with DuplicateModuleError.
func (r *Registry) Register(category string, m *manifest.Manifest, src SourceRef) error {
	if existing, ok := r.entries[m.Name]; ok {
		if existing.Source != src {
			return &DuplicateModuleError{Name: m.Name, Existing: existing.Source}
		}
		return nil
	}

	r.entries[m.Name] = &Entry{
		Manifest: m,
		Category: category,
		State:    StateCataloged,
		Source:   src,
	}
	return nil
}

// Lookup returns the entry for name.
func (r *Registry) Lookup(name string) (*Entry, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return e, nil
}

// ListByCategory returns all entries in the category, ordered by name.
// An empty category returns every entry.
func (r *Registry) ListByCategory(category string) []*Entry {
	var out []*Entry
	for _, e := range r.entries {
		if category == "" || e.Category == category {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// All returns every entry, ordered by name.
func (r *Registry) All() []*Entry {
	return r.ListByCategory("")
}

// Categories returns the distinct categories in use, sorted.
func (r *Registry) Categories() []string {
	seen := make(map[string]bool)
	for _, e := range r.entries {
		seen[e.Category] = true
	}
	cats := make([]string, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// UpdateLinkState records a new link state for name.
func (r *Registry) UpdateLinkState(name string, state LinkState) error {
	e, ok := r.entries[name]
	if !ok {
		return &UnknownModuleError{Name: name}
	}
	e.State = state
	return nil
}

// Remove deletes the entry for name. It fails with HasDependentsError while
// any other registered module still lists name as a dependency, leaving the
// registry unchanged.
func (r *Registry) Remove(name string) error {
	if _, ok := r.entries[name]; !ok {
		return &UnknownModuleError{Name: name}
	}

	var dependents []string
	for _, e := range r.entries {
		if e.Name() == name {
			continue
		}
		if e.Manifest.DependsOn(name) {
			dependents = append(dependents, e.Name())
		}
	}
	if len(dependents) > 0 {
		sort.Strings(dependents)
		return &HasDependentsError{Name: name, Dependents: dependents}
	}

	delete(r.entries, name)
	return nil
}

// Len returns the number of cataloged modules.
func (r *Registry) Len() int {
	return len(r.entries)
}
