package textutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeField lowercases value, trims it and collapses internal whitespace
// runs to a single space. "  North   Wall " and "north wall" normalize equal.
func NormalizeField(value string) string {
	return strings.Join(strings.Fields(strings.ToLower(value)), " ")
}

// CollapseSpace trims value and collapses internal whitespace without
// changing case.
func CollapseSpace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

var titleCaser = cases.Title(language.English)

// TitleCase renders a room or damage label for display ("living_room" becomes
// "Living Room").
func TitleCase(value string) string {
	value = strings.NewReplacer("_", " ", "-", " ").Replace(value)
	value = CollapseSpace(value)
	if value == "" {
		return ""
	}
	return titleCaser.String(value)
}
