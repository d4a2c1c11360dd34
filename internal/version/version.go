// Package version parses and compares module version triples.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a parsed major.minor.patch triple.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Ordering is the result of comparing two versions.
type Ordering int

const (
	Older Ordering = iota - 1
	Equal
	Newer
)

func (o Ordering) String() string {
	switch o {
	case Older:
		return "older"
	case Newer:
		return "newer"
	default:
		return "equal"
	}
}

// Delta classifies the jump from one version to another.
type Delta int

const (
	DeltaInvalid Delta = iota
	DeltaNone
	DeltaPatch
	DeltaMinor
	DeltaMajor
	DeltaDowngrade
)

func (d Delta) String() string {
	switch d {
	case DeltaNone:
		return "none"
	case DeltaPatch:
		return "patch"
	case DeltaMinor:
		return "minor"
	case DeltaMajor:
		return "major"
	case DeltaDowngrade:
		return "downgrade"
	default:
		return "invalid"
	}
}

// ParseError indicates a version string that is not a valid triple.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed version %q (want major.minor.patch)", e.Raw)
}

// Parse parses a version string like "1.2.0" (an optional leading "v" is
// tolerated). All three components must be present and non-negative.
func Parse(s string) (Version, error) {
	raw := strings.TrimSpace(s)
	trimmed := strings.TrimPrefix(raw, "v")

	parts := strings.Split(trimmed, ".")
	if len(parts) != 3 {
		return Version{}, &ParseError{Raw: raw}
	}

	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, &ParseError{Raw: raw}
		}
		nums[i] = n
	}

	v := Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}
	if !semver.IsValid(v.canonical()) {
		return Version{}, &ParseError{Raw: raw}
	}
	return v, nil
}

// MustParse is Parse for compile-time constants; it panics on error.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// canonical renders the version in the form the semver package expects.
func (v Version) canonical() string {
	return "v" + v.String()
}

// Compare orders a against b: Older if a < b, Newer if a > b.
func Compare(a, b Version) Ordering {
	switch semver.Compare(a.canonical(), b.canonical()) {
	case -1:
		return Older
	case 1:
		return Newer
	default:
		return Equal
	}
}

// Classify describes the jump from old to new. Major jumps and downgrades
// are what callers warn about; compatibility here is advisory, never
// enforced by this package.
func Classify(old, new Version) Delta {
	switch Compare(old, new) {
	case Equal:
		return DeltaNone
	case Newer:
		return DeltaDowngrade
	}

	switch {
	case new.Major != old.Major:
		return DeltaMajor
	case new.Minor != old.Minor:
		return DeltaMinor
	default:
		return DeltaPatch
	}
}
