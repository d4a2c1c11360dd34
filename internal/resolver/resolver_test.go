package resolver

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/company/modkit/internal/manifest"
	"github.com/company/modkit/internal/version"
)

// makeModules builds a snapshot from name -> dependency names, every module
// at version 1.0.0.
func makeModules(defs map[string][]string) map[string]ModuleInfo {
	modules := make(map[string]ModuleInfo)
	for name, deps := range defs {
		info := ModuleInfo{Name: name, Version: version.MustParse("1.0.0")}
		for _, d := range deps {
			info.Dependencies = append(info.Dependencies, manifest.Dependency{Name: d})
		}
		modules[name] = info
	}
	return modules
}

func indexOf(order []string, name string) int {
	for i, n := range order {
		if n == name {
			return i
		}
	}
	return -1
}

func TestResolveSimpleChain(t *testing.T) {
	r := New(makeModules(map[string][]string{
		"event-bus":     {},
		"health-system": {"event-bus"},
	}))

	plan, err := r.Resolve("health-system")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	want := []string{"event-bus", "health-system"}
	if !reflect.DeepEqual(plan.InstallOrder, want) {
		t.Errorf("InstallOrder = %v, want %v", plan.InstallOrder, want)
	}
	if !plan.Satisfiable() {
		t.Error("plan should be satisfiable")
	}
	if !plan.Diagnostics.Empty() {
		t.Errorf("Diagnostics = %+v, want empty", plan.Diagnostics)
	}
}

func TestResolveDiamond(t *testing.T) {
	r := New(makeModules(map[string][]string{
		"core":      {},
		"combat":    {"core"},
		"inventory": {"core"},
		"game":      {"combat", "inventory"},
	}))

	plan, err := r.Resolve("game")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	order := plan.InstallOrder
	if len(order) != 4 {
		t.Fatalf("InstallOrder len = %d, want 4: %v", len(order), order)
	}
	if indexOf(order, "core") > indexOf(order, "combat") ||
		indexOf(order, "core") > indexOf(order, "inventory") ||
		indexOf(order, "combat") > indexOf(order, "game") ||
		indexOf(order, "inventory") > indexOf(order, "game") {
		t.Errorf("dependencies out of order: %v", order)
	}
	// ties among independent subtrees break by name
	if indexOf(order, "combat") > indexOf(order, "inventory") {
		t.Errorf("tie-break not by name: %v", order)
	}
}

func TestResolveCycle(t *testing.T) {
	r := New(makeModules(map[string][]string{
		"a": {"b"},
		"b": {"a"},
	}))

	plan, err := r.Resolve("a")
	if plan != nil {
		t.Errorf("plan = %v, want nil on cycle", plan)
	}

	var cyclic *CyclicDependencyError
	if !errors.As(err, &cyclic) {
		t.Fatalf("error = %v, want *CyclicDependencyError", err)
	}
	if len(cyclic.Path) < 3 {
		t.Errorf("Path = %v, want a closed cycle", cyclic.Path)
	}
	if cyclic.Path[0] != cyclic.Path[len(cyclic.Path)-1] {
		t.Errorf("Path = %v, should start and end on the same node", cyclic.Path)
	}
}

func TestResolveSelfCycle(t *testing.T) {
	r := New(makeModules(map[string][]string{"a": {"a"}}))

	_, err := r.Resolve("a")
	var cyclic *CyclicDependencyError
	if !errors.As(err, &cyclic) {
		t.Fatalf("error = %v, want *CyclicDependencyError", err)
	}
}

func TestResolveMissingTarget(t *testing.T) {
	r := New(makeModules(map[string][]string{"a": {}}))

	_, err := r.Resolve("ghost")
	var missing *MissingModuleError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want *MissingModuleError", err)
	}
}

func TestResolveUnresolvedDependency(t *testing.T) {
	// save-system depends on cloud-sync which is not registered; the game
	// target still gets its satisfiable subtree installed.
	r := New(makeModules(map[string][]string{
		"event-bus":   {},
		"save-system": {"cloud-sync"},
		"game":        {"event-bus", "save-system"},
	}))

	plan, err := r.Resolve("game")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if !reflect.DeepEqual(plan.InstallOrder, []string{"event-bus"}) {
		t.Errorf("InstallOrder = %v, want [event-bus]", plan.InstallOrder)
	}
	if !reflect.DeepEqual(plan.Skipped, []string{"game", "save-system"}) {
		t.Errorf("Skipped = %v, want [game save-system]", plan.Skipped)
	}
	if plan.Satisfiable() {
		t.Error("plan should not be satisfiable for the target")
	}

	if len(plan.Diagnostics.Unresolved) != 1 {
		t.Fatalf("Unresolved = %v, want one entry", plan.Diagnostics.Unresolved)
	}
	u := plan.Diagnostics.Unresolved[0]
	if u.Dependency != "cloud-sync" || u.Module != "save-system" {
		t.Errorf("Unresolved[0] = %+v", u)
	}
}

func TestResolveVersionDrift(t *testing.T) {
	required := version.MustParse("1.0.0")
	modules := makeModules(map[string][]string{"event-bus": {}})
	modules["event-bus"] = ModuleInfo{Name: "event-bus", Version: version.MustParse("2.0.0")}
	modules["health-system"] = ModuleInfo{
		Name:         "health-system",
		Version:      version.MustParse("1.0.0"),
		Dependencies: []manifest.Dependency{{Name: "event-bus", Required: &required}},
	}

	plan, err := New(modules).Resolve("health-system")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	// drift is advisory: the module stays in the plan
	if !plan.Satisfiable() {
		t.Error("drift should not remove modules from the plan")
	}
	if len(plan.Diagnostics.Drift) != 1 {
		t.Fatalf("Drift = %v, want one entry", plan.Diagnostics.Drift)
	}
	d := plan.Diagnostics.Drift[0]
	if d.Delta != version.DeltaMajor {
		t.Errorf("Delta = %v, want major", d.Delta)
	}
	if d.Module != "health-system" || d.Dependency != "event-bus" {
		t.Errorf("Drift[0] = %+v", d)
	}
}

func TestResolveNoDriftWithoutRequiredVersion(t *testing.T) {
	// A by-name-only link performs no version check.
	modules := makeModules(map[string][]string{
		"event-bus":     {},
		"health-system": {"event-bus"},
	})
	modules["event-bus"] = ModuleInfo{Name: "event-bus", Version: version.MustParse("9.0.0")}

	plan, err := New(modules).Resolve("health-system")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if len(plan.Diagnostics.Drift) != 0 {
		t.Errorf("Drift = %v, want none", plan.Diagnostics.Drift)
	}
}

func TestResolveMinorDriftNotReported(t *testing.T) {
	required := version.MustParse("1.0.0")
	modules := map[string]ModuleInfo{
		"event-bus": {Name: "event-bus", Version: version.MustParse("1.3.0")},
		"game": {
			Name:         "game",
			Version:      version.MustParse("1.0.0"),
			Dependencies: []manifest.Dependency{{Name: "event-bus", Required: &required}},
		},
	}

	plan, err := New(modules).Resolve("game")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if len(plan.Diagnostics.Drift) != 0 {
		t.Errorf("minor delta should not be reported: %v", plan.Diagnostics.Drift)
	}
}

func TestResolveDeterministic(t *testing.T) {
	defs := map[string][]string{
		"game": {"zeta", "alpha", "mid"},
		"zeta": {}, "alpha": {}, "mid": {},
	}

	first, err := New(makeModules(defs)).Resolve("game")
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	for i := 0; i < 20; i++ {
		plan, err := New(makeModules(defs)).Resolve("game")
		if err != nil {
			t.Fatalf("Resolve() error: %v", err)
		}
		if !reflect.DeepEqual(plan.InstallOrder, first.InstallOrder) {
			t.Fatalf("non-deterministic order: %v vs %v", plan.InstallOrder, first.InstallOrder)
		}
	}

	want := []string{"alpha", "mid", "zeta", "game"}
	if !reflect.DeepEqual(first.InstallOrder, want) {
		t.Errorf("InstallOrder = %v, want %v", first.InstallOrder, want)
	}
}

// TestResolveOrderRespectsDependencies checks the core ordering invariant on
// randomly generated acyclic graphs: every module appears strictly after all
// of its dependencies.
func TestResolveOrderRespectsDependencies(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(rt, "n")

		// Edges only point to lower-numbered modules, so the graph is
		// acyclic by construction.
		defs := make(map[string][]string, n)
		for i := 0; i < n; i++ {
			name := fmt.Sprintf("mod-%02d", i)
			var deps []string
			for j := 0; j < i; j++ {
				if rapid.Bool().Draw(rt, fmt.Sprintf("edge-%d-%d", i, j)) {
					deps = append(deps, fmt.Sprintf("mod-%02d", j))
				}
			}
			defs[name] = deps
		}

		target := fmt.Sprintf("mod-%02d", n-1)
		plan, err := New(makeModules(defs)).Resolve(target)
		if err != nil {
			rt.Fatalf("Resolve() error: %v", err)
		}

		for _, name := range plan.InstallOrder {
			for _, dep := range defs[name] {
				di := indexOf(plan.InstallOrder, dep)
				ni := indexOf(plan.InstallOrder, name)
				if di == -1 || di >= ni {
					rt.Fatalf("%s (idx %d) must come after its dependency %s (idx %d): %v",
						name, ni, dep, di, plan.InstallOrder)
				}
			}
		}
		if !plan.Satisfiable() {
			rt.Fatalf("fully registered graph must be satisfiable: %v", plan)
		}
		if len(plan.Skipped) != 0 || !plan.Diagnostics.Empty() {
			rt.Fatalf("unexpected diagnostics: %+v", plan)
		}
	})
}
