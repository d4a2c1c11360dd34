package manifest

import (
	"errors"
	"reflect"
	"testing"

	"github.com/company/modkit/internal/version"
)

const healthDoc = `# health-system

Tracks hit points, damage, and death for any entity in the scene tree.

## Module Info

- Category: mechanics
- Version: 1.2.0
- Tags: health, damage, combat
- Dependencies: stat-block@1.0.0, event-bus
- Autoloads: HealthManager -> autoload/health_manager.gd
- Compatible Games: 2D, 3D

## Configuration

max_health (int, default 100): starting hit points.

## Signals

died(entity): emitted when health reaches zero.
`

func TestParse(t *testing.T) {
	m, err := Parse(healthDoc)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if m.Name != "health-system" {
		t.Errorf("Name = %q, want %q", m.Name, "health-system")
	}
	if m.Category != "mechanics" {
		t.Errorf("Category = %q, want %q", m.Category, "mechanics")
	}
	if m.Version != (version.Version{Major: 1, Minor: 2}) {
		t.Errorf("Version = %v, want 1.2.0", m.Version)
	}
	if !reflect.DeepEqual(m.Tags, []string{"health", "damage", "combat"}) {
		t.Errorf("Tags = %v", m.Tags)
	}

	if len(m.Dependencies) != 2 {
		t.Fatalf("Dependencies len = %d, want 2", len(m.Dependencies))
	}
	if m.Dependencies[0].Name != "stat-block" || m.Dependencies[0].Required == nil {
		t.Errorf("Dependencies[0] = %+v, want stat-block@1.0.0", m.Dependencies[0])
	}
	if m.Dependencies[0].Required != nil && *m.Dependencies[0].Required != version.MustParse("1.0.0") {
		t.Errorf("Dependencies[0].Required = %v, want 1.0.0", m.Dependencies[0].Required)
	}
	if m.Dependencies[1].Name != "event-bus" || m.Dependencies[1].Required != nil {
		t.Errorf("Dependencies[1] = %+v, want bare event-bus", m.Dependencies[1])
	}

	if len(m.Autoloads) != 1 || m.Autoloads[0].Name != "HealthManager" || m.Autoloads[0].Path != "autoload/health_manager.gd" {
		t.Errorf("Autoloads = %+v", m.Autoloads)
	}
	if !reflect.DeepEqual(m.CompatibleTargets, []Target{Target2D, Target3D}) {
		t.Errorf("CompatibleTargets = %v", m.CompatibleTargets)
	}
}

func TestParseNoneValues(t *testing.T) {
	doc := `# event-bus

## Module Info

- Category: systems
- Version: 2.0.1
- Tags: none
- Dependencies: none
- Autoloads: none
- Compatible Games: Both
`
	m, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(m.Tags) != 0 || len(m.Dependencies) != 0 || len(m.Autoloads) != 0 {
		t.Errorf("none values should parse empty: tags=%v deps=%v autoloads=%v", m.Tags, m.Dependencies, m.Autoloads)
	}
}

func TestParseBoldKeys(t *testing.T) {
	doc := "# dialog-ui\n\n## Module Info\n\n- **Category:** ui\n- **Version:** 0.3.0\n"
	m, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if m.Category != "ui" || m.Version != version.MustParse("0.3.0") {
		t.Errorf("bold keys: category=%q version=%v", m.Category, m.Version)
	}
}

func TestParseMissingVersion(t *testing.T) {
	doc := "# broken\n\n## Module Info\n\n- Category: systems\n"
	_, err := Parse(doc)

	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want *MissingFieldError", err)
	}
	if missing.Field != "version" {
		t.Errorf("Field = %q, want %q", missing.Field, "version")
	}
}

func TestParseMalformedVersion(t *testing.T) {
	doc := "# broken\n\n## Module Info\n\n- Version: not-a-version\n"
	_, err := Parse(doc)

	var malformed *MalformedVersionError
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want *MalformedVersionError", err)
	}
}

func TestParseMissingInfoBlock(t *testing.T) {
	_, err := Parse("# bare\n\njust prose, no info block\n")

	var missing *MissingInfoBlockError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want *MissingInfoBlockError", err)
	}
}

func TestParseIgnoresUnknownKeys(t *testing.T) {
	doc := "# fwd\n\n## Module Info\n\n- Version: 1.0.0\n- License: MIT\n- Minimum Engine: 4.2\n"
	m, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if m.Name != "fwd" {
		t.Errorf("Name = %q", m.Name)
	}
}

func TestRenderRoundTrip(t *testing.T) {
	required := version.MustParse("1.0.0")
	original := &Manifest{
		Name:     "inventory",
		Category: "mechanics",
		Version:  version.MustParse("2.1.3"),
		Tags:     []string{"items", "storage"},
		Dependencies: []Dependency{
			{Name: "stat-block", Required: &required},
			{Name: "event-bus"},
		},
		Autoloads:         []Autoload{{Name: "Inventory", Path: "autoload/inventory.gd"}},
		CompatibleTargets: []Target{TargetBoth},
	}

	reparsed, err := Parse(Render(original))
	if err != nil {
		t.Fatalf("Parse(Render()) error: %v", err)
	}
	if !reflect.DeepEqual(original, reparsed) {
		t.Errorf("round trip mismatch:\n  original: %+v\n  reparsed: %+v", original, reparsed)
	}
}

func TestDefaultRoundTrip(t *testing.T) {
	m := Default("loot-tables", "mechanics")
	if m.Version != version.MustParse("1.0.0") {
		t.Errorf("default version = %v, want 1.0.0", m.Version)
	}

	reparsed, err := Parse(Render(m))
	if err != nil {
		t.Fatalf("Parse(Render(Default())) error: %v", err)
	}
	if !reflect.DeepEqual(m, reparsed) {
		t.Errorf("default round trip mismatch: %+v vs %+v", m, reparsed)
	}
}
