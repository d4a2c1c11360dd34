// Package manifest parses a module's description document into a structured
// manifest. All tolerance for the free-text format lives here; everything
// downstream (registry, resolver, lifecycle) operates on the parsed type.
package manifest

import (
	"fmt"
	"strings"

	"github.com/company/modkit/internal/version"
)

// DocumentName is the manifest document filename inside a module folder.
const DocumentName = "MODULE.md"

// Target is an informational compatibility flag. It never participates in
// dependency resolution.
type Target string

const (
	Target2D   Target = "2D"
	Target3D   Target = "3D"
	TargetBoth Target = "Both"
)

// Dependency is one required module. Required is nil when the document links
// the dependency by name only.
type Dependency struct {
	Name     string
	Required *version.Version
}

func (d Dependency) String() string {
	if d.Required == nil {
		return d.Name
	}
	return d.Name + "@" + d.Required.String()
}

// Autoload is one logical-name to entry-point pair. Informational; modkit
// never resolves the path.
type Autoload struct {
	Name string
	Path string
}

// Manifest is the parsed description of a module.
type Manifest struct {
	Name              string
	Category          string
	Version           version.Version
	Tags              []string
	Dependencies      []Dependency
	Autoloads         []Autoload
	CompatibleTargets []Target
}

// DependencyNames returns the bare names of all dependencies, in document order.
func (m *Manifest) DependencyNames() []string {
	names := make([]string, 0, len(m.Dependencies))
	for _, d := range m.Dependencies {
		names = append(names, d.Name)
	}
	return names
}

// DependsOn reports whether the manifest lists name as a dependency.
func (m *Manifest) DependsOn(name string) bool {
	for _, d := range m.Dependencies {
		if d.Name == name {
			return true
		}
	}
	return false
}

// MissingFieldError indicates a required Module Info key was absent.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("manifest is missing required field %q", e.Field)
}

// MalformedVersionError indicates the Version value did not parse.
type MalformedVersionError struct {
	Raw string
}

func (e *MalformedVersionError) Error() string {
	return fmt.Sprintf("manifest has malformed version %q", e.Raw)
}

// MissingInfoBlockError indicates the document has no Module Info section.
type MissingInfoBlockError struct{}

func (e *MissingInfoBlockError) Error() string {
	return "manifest document has no Module Info section"
}

// Parse turns a module description document into a Manifest. The document is
// free-form markdown; only the first level-one heading (the module name) and
// the key/value lines of the "Module Info" section are significant. Unknown
// keys are ignored so newer documents still parse.
func Parse(text string) (*Manifest, error) {
	m := &Manifest{}

	lines := strings.Split(text, "\n")
	inInfo := false
	sawInfo := false
	sawVersion := false

	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		if m.Name == "" && strings.HasPrefix(line, "# ") {
			m.Name = strings.TrimSpace(strings.TrimPrefix(line, "# "))
			continue
		}

		if isHeading(line) {
			inInfo = headingTitle(line) == "module info"
			if inInfo {
				sawInfo = true
			}
			continue
		}
		if !inInfo {
			continue
		}

		key, value, ok := splitInfoLine(line)
		if !ok {
			continue
		}

		switch strings.ToLower(key) {
		case "category":
			m.Category = value
		case "version":
			sawVersion = true
			v, err := version.Parse(value)
			if err != nil {
				return nil, &MalformedVersionError{Raw: value}
			}
			m.Version = v
		case "tags":
			m.Tags = splitList(value)
		case "dependencies":
			m.Dependencies = parseDependencies(value)
		case "autoloads":
			m.Autoloads = parseAutoloads(value)
		case "compatible games":
			m.CompatibleTargets = parseTargets(value)
		}
	}

	if !sawInfo {
		return nil, &MissingInfoBlockError{}
	}
	if !sawVersion {
		return nil, &MissingFieldError{Field: "version"}
	}

	return m, nil
}

func isHeading(line string) bool {
	return strings.HasPrefix(line, "## ")
}

func headingTitle(line string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "## ")))
}

// splitInfoLine parses "Key: value" lines, tolerating list bullets and bold
// markers ("- **Version:** 1.0.0").
func splitInfoLine(line string) (key, value string, ok bool) {
	line = strings.TrimPrefix(line, "- ")
	line = strings.TrimPrefix(line, "* ")
	line = strings.ReplaceAll(line, "**", "")

	idx := strings.Index(line, ":")
	if idx < 1 {
		return "", "", false
	}
	return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
}

func splitList(value string) []string {
	if isNone(value) {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseDependencies accepts bare module names or "name@1.2.0" references.
// A name that never matches a registry entry is not a parse error; the
// resolver reports it later as an unresolved dependency.
func parseDependencies(value string) []Dependency {
	var deps []Dependency
	for _, part := range splitList(value) {
		name, rawVer, found := strings.Cut(part, "@")
		d := Dependency{Name: strings.TrimSpace(name)}
		if found {
			if v, err := version.Parse(rawVer); err == nil {
				d.Required = &v
			}
		}
		deps = append(deps, d)
	}
	return deps
}

func parseAutoloads(value string) []Autoload {
	var autoloads []Autoload
	for _, part := range splitList(value) {
		name, path, found := strings.Cut(part, "->")
		if !found {
			continue
		}
		autoloads = append(autoloads, Autoload{
			Name: strings.TrimSpace(name),
			Path: strings.TrimSpace(path),
		})
	}
	return autoloads
}

func parseTargets(value string) []Target {
	var targets []Target
	for _, part := range splitList(value) {
		switch strings.ToLower(part) {
		case "2d":
			targets = append(targets, Target2D)
		case "3d":
			targets = append(targets, Target3D)
		case "both":
			targets = append(targets, TargetBoth)
		}
	}
	return targets
}

func isNone(value string) bool {
	return value == "" || strings.EqualFold(value, "none")
}
