// File: lixenwraith/hiconf/helper.go
package hiconf

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	wordBoundary  = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	lowerToUpper  = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	maxSuggestion = 8
)

// splitPath splits a dot-notation path into validated segments.
func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("empty path")
	}
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		if !isValidKeySegment(segment) {
			return nil, fmt.Errorf("invalid path segment %q in path %q", segment, path)
		}
	}
	return segments, nil
}

// isValidKeySegment checks if a single path segment is a valid TOML bare key.
func isValidKeySegment(s string) bool {
	if len(s) == 0 {
		return false
	}
	// TOML bare keys are sequences of ASCII letters, ASCII digits, underscores, and dashes (A-Za-z0-9_-).
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !(isLetter || isDigit || r == '_' || r == '-') {
			return false
		}
	}
	return true
}

// camelToKebab converts CamelCase type names to kebab-case aliases ("MLTrainingConfig" -> "ml-training-config").
func camelToKebab(name string) string {
	s := wordBoundary.ReplaceAllString(name, "${1}-${2}")
	s = lowerToUpper.ReplaceAllString(s, "${1}-${2}")
	return strings.ToLower(s)
}

// kebabToSnake converts CLI-style segment names ("hidden-dim") to field names ("hidden_dim").
func kebabToSnake(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// sortedKeys returns the keys of a map in lexical order
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// truncateNames caps long alternative lists in diagnostics
func truncateNames(names []string) []string {
	if len(names) <= maxSuggestion {
		return names
	}
	out := append([]string(nil), names[:maxSuggestion]...)
	return append(out, fmt.Sprintf("... (%d more)", len(names)-maxSuggestion))
}
