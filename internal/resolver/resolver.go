// Package resolver builds and validates the dependency graph across the
// registry and produces ordered installation plans. It operates over an
// immutable snapshot taken at the start of an operation and never mutates
// shared state.
package resolver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/company/modkit/internal/manifest"
	"github.com/company/modkit/internal/version"
)

// ModuleInfo is the slice of a registry entry the resolver needs.
type ModuleInfo struct {
	Name         string
	Version      version.Version
	Dependencies []manifest.Dependency
}

// Unresolved is a dependency name with no matching registry entry.
type Unresolved struct {
	Module     string // the module that requires it
	Dependency string
}

func (u Unresolved) String() string {
	return fmt.Sprintf("%s (required by %s)", u.Dependency, u.Module)
}

// Drift is an advisory warning about a version delta between what a manifest
// was authored against and what the registry holds. It never blocks a plan.
type Drift struct {
	Module     string
	Dependency string
	Required   version.Version
	Registered version.Version
	Delta      version.Delta
}

func (d Drift) String() string {
	return fmt.Sprintf("%s requires %s@%s but %s is registered (%s)",
		d.Module, d.Dependency, d.Required, d.Registered, d.Delta)
}

// Diagnostics collects the non-fatal findings attached to a plan.
type Diagnostics struct {
	Unresolved []Unresolved
	Drift      []Drift
}

// Empty reports whether there is nothing to surface.
func (d Diagnostics) Empty() bool {
	return len(d.Unresolved) == 0 && len(d.Drift) == 0
}

// Plan is the result of resolving a target module: the largest satisfiable
// install order (dependencies strictly before dependents), the modules that
// had to be skipped, and the diagnostics report.
type Plan struct {
	Target       string
	InstallOrder []string
	Skipped      []string
	Diagnostics  Diagnostics
}

// Satisfiable reports whether the target itself made it into the plan.
func (p *Plan) Satisfiable() bool {
	for _, name := range p.InstallOrder {
		if name == p.Target {
			return true
		}
	}
	return false
}

// CyclicDependencyError is fatal: a cycle can never be installed correctly,
// so resolution aborts entirely.
type CyclicDependencyError struct {
	Path []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency: %s", strings.Join(e.Path, " -> "))
}

// MissingModuleError indicates the resolution target is not registered.
type MissingModuleError struct {
	Name string
}

func (e *MissingModuleError) Error() string {
	return fmt.Sprintf("module %q is not in the registry", e.Name)
}

// Resolver resolves module dependencies over a snapshot.
type Resolver struct {
	modules map[string]ModuleInfo
}

// New creates a resolver over the given snapshot.
func New(modules map[string]ModuleInfo) *Resolver {
	return &Resolver{modules: modules}
}

// Resolve produces the installation plan for target. Cycles abort resolution
// with CyclicDependencyError; unresolved dependencies only remove the modules
// that transitively depend on them, and are reported as diagnostics.
func (r *Resolver) Resolve(target string) (*Plan, error) {
	if _, ok := r.modules[target]; !ok {
		return nil, &MissingModuleError{Name: target}
	}

	reachable, unresolved := r.collect(target)

	if cycle := r.findCycle(reachable); cycle != nil {
		return nil, &CyclicDependencyError{Path: cycle}
	}

	satisfiable, skipped := r.partition(reachable)
	order := r.order(satisfiable)

	plan := &Plan{
		Target:       target,
		InstallOrder: order,
		Skipped:      skipped,
		Diagnostics: Diagnostics{
			Unresolved: unresolved,
			Drift:      r.drift(reachable),
		},
	}
	return plan, nil
}

// collect walks the graph from target, returning the set of reachable
// registered modules and the unresolved dependency edges found on the way.
func (r *Resolver) collect(target string) (map[string]bool, []Unresolved) {
	reachable := make(map[string]bool)
	var unresolved []Unresolved

	queue := []string{target}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if reachable[current] {
			continue
		}
		reachable[current] = true

		for _, dep := range r.modules[current].Dependencies {
			if _, ok := r.modules[dep.Name]; !ok {
				unresolved = append(unresolved, Unresolved{Module: current, Dependency: dep.Name})
				continue
			}
			queue = append(queue, dep.Name)
		}
	}

	sort.Slice(unresolved, func(i, j int) bool {
		if unresolved[i].Dependency != unresolved[j].Dependency {
			return unresolved[i].Dependency < unresolved[j].Dependency
		}
		return unresolved[i].Module < unresolved[j].Module
	})
	return reachable, unresolved
}

// findCycle runs a three-color depth-first traversal over the reachable
// subgraph. A back-edge to a gray node yields the cycle path.
func (r *Resolver) findCycle(reachable map[string]bool) []string {
	const (
		white = 0 // unvisited
		gray  = 1 // on the current path
		black = 2 // fully explored
	)
	color := make(map[string]int, len(reachable))
	var path []string

	var dfs func(node string) []string
	dfs = func(node string) []string {
		color[node] = gray
		path = append(path, node)

		for _, dep := range r.sortedDeps(node) {
			if !reachable[dep] {
				continue
			}
			switch color[dep] {
			case gray:
				for i, n := range path {
					if n == dep {
						cycle := make([]string, len(path[i:])+1)
						copy(cycle, path[i:])
						cycle[len(cycle)-1] = dep
						return cycle
					}
				}
			case white:
				if cycle := dfs(dep); cycle != nil {
					return cycle
				}
			}
		}

		path = path[:len(path)-1]
		color[node] = black
		return nil
	}

	for _, name := range sortedKeys(reachable) {
		if color[name] == white {
			if cycle := dfs(name); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// partition splits the reachable set into modules whose dependency closure
// is fully registered and modules that must be skipped because something
// underneath them is unresolved. Requires an acyclic graph.
func (r *Resolver) partition(reachable map[string]bool) (satisfiable map[string]bool, skipped []string) {
	satisfiable = make(map[string]bool, len(reachable))
	memo := make(map[string]bool, len(reachable))

	var ok func(node string) bool
	ok = func(node string) bool {
		if v, seen := memo[node]; seen {
			return v
		}
		result := true
		for _, dep := range r.modules[node].Dependencies {
			if _, registered := r.modules[dep.Name]; !registered {
				result = false
				break
			}
			if !ok(dep.Name) {
				result = false
				break
			}
		}
		memo[node] = result
		return result
	}

	for name := range reachable {
		if ok(name) {
			satisfiable[name] = true
		} else {
			skipped = append(skipped, name)
		}
	}
	sort.Strings(skipped)
	return satisfiable, skipped
}

// order computes the topological install order over the satisfiable set
// using Kahn's algorithm. Ties among independent subtrees break by module
// name, ascending, so plans are deterministic.
func (r *Resolver) order(satisfiable map[string]bool) []string {
	inDegree := make(map[string]int, len(satisfiable))
	dependents := make(map[string][]string) // dep -> modules that require it

	for name := range satisfiable {
		inDegree[name] += 0
		for _, dep := range r.modules[name].Dependencies {
			if satisfiable[dep.Name] {
				dependents[dep.Name] = append(dependents[dep.Name], name)
				inDegree[name]++
			}
		}
	}

	var queue []string
	for name, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, name)
		}
	}

	order := make([]string, 0, len(satisfiable))
	for len(queue) > 0 {
		sort.Strings(queue)
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		for _, dependent := range dependents[node] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}
	return order
}

// drift classifies each edge that records a required version against the
// registered version of the dependency. Major deltas and downgrades are
// surfaced; patch and minor deltas are considered compatible.
func (r *Resolver) drift(reachable map[string]bool) []Drift {
	var drifts []Drift
	for _, name := range sortedKeys(reachable) {
		for _, dep := range r.modules[name].Dependencies {
			if dep.Required == nil {
				continue
			}
			info, ok := r.modules[dep.Name]
			if !ok {
				continue
			}
			delta := version.Classify(*dep.Required, info.Version)
			if delta == version.DeltaMajor || delta == version.DeltaDowngrade {
				drifts = append(drifts, Drift{
					Module:     name,
					Dependency: dep.Name,
					Required:   *dep.Required,
					Registered: info.Version,
					Delta:      delta,
				})
			}
		}
	}
	return drifts
}

func (r *Resolver) sortedDeps(node string) []string {
	deps := make([]string, 0, len(r.modules[node].Dependencies))
	for _, d := range r.modules[node].Dependencies {
		deps = append(deps, d.Name)
	}
	sort.Strings(deps)
	return deps
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
