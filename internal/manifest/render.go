package manifest

import (
	"strings"

	"github.com/company/modkit/internal/version"
)

// Render produces a description document for the manifest. The output parses
// back to an equal Manifest, which is what the extract workflow relies on
// when it generates a default document for an unpublished module.
func Render(m *Manifest) string {
	var b strings.Builder

	b.WriteString("# " + m.Name + "\n\n")
	b.WriteString("## Module Info\n\n")
	b.WriteString("- Category: " + m.Category + "\n")
	b.WriteString("- Version: " + m.Version.String() + "\n")
	b.WriteString("- Tags: " + joinOrNone(m.Tags) + "\n")

	deps := make([]string, 0, len(m.Dependencies))
	for _, d := range m.Dependencies {
		deps = append(deps, d.String())
	}
	b.WriteString("- Dependencies: " + joinOrNone(deps) + "\n")

	autoloads := make([]string, 0, len(m.Autoloads))
	for _, a := range m.Autoloads {
		autoloads = append(autoloads, a.Name+" -> "+a.Path)
	}
	b.WriteString("- Autoloads: " + joinOrNone(autoloads) + "\n")

	targets := make([]string, 0, len(m.CompatibleTargets))
	for _, t := range m.CompatibleTargets {
		targets = append(targets, string(t))
	}
	b.WriteString("- Compatible Games: " + joinOrNone(targets) + "\n")

	return b.String()
}

// Default returns a minimal manifest for a module that has no description
// document yet.
func Default(name, category string) *Manifest {
	return &Manifest{
		Name:              name,
		Category:          category,
		Version:           version.Version{Major: 1},
		CompatibleTargets: []Target{TargetBoth},
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
