package service

import (
	"regexp"
	"strings"
)

// placeholderPattern matches {name} style placeholders
var placeholderPattern = regexp.MustCompile(`\{[a-zA-Z_][a-zA-Z0-9_]*\}`)

// Render substitutes every literal {key} occurrence whose key is present
// in values. Keys absent from values are left as literal text. The
// function is pure: no side effects, deterministic output.
func Render(template string, values map[string]string) string {
	rendered := template
	for key, value := range values {
		rendered = strings.ReplaceAll(rendered, "{"+key+"}", value)
	}
	return rendered
}

// Placeholders extracts all placeholders from a template, in order of
// appearance, including duplicates.
func Placeholders(template string) []string {
	return placeholderPattern.FindAllString(template, -1)
}
