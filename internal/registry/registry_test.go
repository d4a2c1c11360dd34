package registry

import (
	"errors"
	"testing"

	"github.com/company/modkit/internal/manifest"
	"github.com/company/modkit/internal/version"
)

func makeManifest(name string, deps ...string) *manifest.Manifest {
	m := &manifest.Manifest{
		Name:     name,
		Category: "systems",
		Version:  version.MustParse("1.0.0"),
	}
	for _, d := range deps {
		m.Dependencies = append(m.Dependencies, manifest.Dependency{Name: d})
	}
	return m
}

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	src := SourceRef{Remote: "git@example.com:mods/event-bus.git"}

	if err := r.Register("systems", makeManifest("event-bus"), src); err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	e, err := r.Lookup("event-bus")
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if e.State != StateCataloged {
		t.Errorf("State = %q, want %q", e.State, StateCataloged)
	}
	if e.Source != src {
		t.Errorf("Source = %v, want %v", e.Source, src)
	}
}

func TestRegisterIdempotent(t *testing.T) {
	r := New()
	src := SourceRef{Remote: "git@example.com:mods/event-bus.git"}

	if err := r.Register("systems", makeManifest("event-bus"), src); err != nil {
		t.Fatalf("first Register() error: %v", err)
	}
	if err := r.Register("systems", makeManifest("event-bus"), src); err != nil {
		t.Fatalf("identical re-Register() error: %v", err)
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := New()
	r.Register("systems", makeManifest("event-bus"), SourceRef{Remote: "git@a/event-bus.git"})

	err := r.Register("systems", makeManifest("event-bus"), SourceRef{Remote: "git@b/event-bus.git"})
	var dup *DuplicateModuleError
	if !errors.As(err, &dup) {
		t.Fatalf("error = %v, want *DuplicateModuleError", err)
	}
	if dup.Name != "event-bus" {
		t.Errorf("Name = %q", dup.Name)
	}
}

func TestLookupNotFound(t *testing.T) {
	r := New()
	_, err := r.Lookup("ghost")

	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want *NotFoundError", err)
	}
}

func TestListByCategory(t *testing.T) {
	r := New()
	r.Register("ui", makeManifest("dialog-ui"), SourceRef{Remote: "r1"})
	r.Register("systems", makeManifest("event-bus"), SourceRef{Remote: "r2"})
	r.Register("ui", makeManifest("combat-hud"), SourceRef{Remote: "r3"})

	ui := r.ListByCategory("ui")
	if len(ui) != 2 {
		t.Fatalf("ListByCategory(ui) len = %d, want 2", len(ui))
	}
	// ordered by name, ascending
	if ui[0].Name() != "combat-hud" || ui[1].Name() != "dialog-ui" {
		t.Errorf("order = [%s, %s]", ui[0].Name(), ui[1].Name())
	}

	if all := r.All(); len(all) != 3 {
		t.Errorf("All() len = %d, want 3", len(all))
	}
}

func TestUpdateLinkState(t *testing.T) {
	r := New()
	r.Register("systems", makeManifest("event-bus"), SourceRef{Remote: "r"})

	if err := r.UpdateLinkState("event-bus", StateLinkedAttached); err != nil {
		t.Fatalf("UpdateLinkState() error: %v", err)
	}
	e, _ := r.Lookup("event-bus")
	if e.State != StateLinkedAttached {
		t.Errorf("State = %q", e.State)
	}

	err := r.UpdateLinkState("ghost", StateCopied)
	var unknown *UnknownModuleError
	if !errors.As(err, &unknown) {
		t.Fatalf("error = %v, want *UnknownModuleError", err)
	}
}

func TestRemoveWithDependents(t *testing.T) {
	r := New()
	r.Register("systems", makeManifest("event-bus"), SourceRef{Remote: "r1"})
	r.Register("mechanics", makeManifest("health-system", "event-bus"), SourceRef{Remote: "r2"})

	err := r.Remove("event-bus")
	var hd *HasDependentsError
	if !errors.As(err, &hd) {
		t.Fatalf("error = %v, want *HasDependentsError", err)
	}
	if len(hd.Dependents) != 1 || hd.Dependents[0] != "health-system" {
		t.Errorf("Dependents = %v", hd.Dependents)
	}

	// registry unchanged
	if _, err := r.Lookup("event-bus"); err != nil {
		t.Errorf("event-bus should still be registered: %v", err)
	}

	// removing the dependent first unblocks the dependency
	if err := r.Remove("health-system"); err != nil {
		t.Fatalf("Remove(health-system) error: %v", err)
	}
	if err := r.Remove("event-bus"); err != nil {
		t.Fatalf("Remove(event-bus) error: %v", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0", r.Len())
	}
}
