package ui

import (
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"
)

// IsCI returns true if running in a CI environment.
// gitlab-ci-local sets GITLAB_CI=false, which should not be treated as CI.
func IsCI() bool {
	return isTruthy(os.Getenv("CI")) ||
		isTruthy(os.Getenv("MODKIT_CI")) ||
		isTruthy(os.Getenv("GITHUB_ACTIONS")) ||
		isTruthy(os.Getenv("GITLAB_CI"))
}

func isTruthy(v string) bool {
	return v != "" && v != "false" && v != "0"
}

// ModuleOption represents a selectable catalog module.
type ModuleOption struct {
	Name     string
	Category string
	Version  string
}

// SelectModule prompts the user to pick one module from the catalog,
// grouped by category.
func SelectModule(modules []ModuleOption) (string, error) {
	byCategory := make(map[string][]ModuleOption)
	for _, m := range modules {
		byCategory[m.Category] = append(byCategory[m.Category], m)
	}

	catNames := make([]string, 0, len(byCategory))
	for c := range byCategory {
		catNames = append(catNames, c)
	}
	sort.Strings(catNames)

	var options []huh.Option[string]
	for _, cat := range catNames {
		for _, m := range byCategory[cat] {
			catLabel := cat
			if len(cat) > 0 {
				catLabel = strings.ToUpper(cat[:1]) + cat[1:]
			}
			label := catLabel + ": " + m.Name
			if m.Version != "" {
				label += " (" + m.Version + ")"
			}
			options = append(options, huh.NewOption(label, m.Name))
		}
	}

	var selected string
	err := huh.NewSelect[string]().
		Title("Which module do you want to add?").
		Options(options...).
		Value(&selected).
		Run()
	return selected, err
}

// Confirm prompts the user for a yes/no confirmation.
func Confirm(title string) (bool, error) {
	var confirmed bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&confirmed).
		Run()
	return confirmed, err
}
