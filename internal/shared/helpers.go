// Package shared provides common utility functions used across multiple
// packages in the context-bisect codebase.
package shared

import (
	"fmt"
	"sort"
	"strings"
)

// SplitRequest splits a raw request string into its whitespace-separated
// constraint tokens, dropping empty fields.
func SplitRequest(raw string) []string {
	return strings.Fields(raw)
}

// EnvVarName converts a package name into its environment-variable
// form: uppercased, with hyphens and dots replaced by underscores.
func EnvVarName(name string) string {
	upper := strings.ToUpper(strings.TrimSpace(name))
	replacer := strings.NewReplacer("-", "_", ".", "_")
	return replacer.Replace(upper)
}

// JoinSorted renders a set of offending items as a stable,
// comma-separated list for error messages.
func JoinSorted(items map[string]struct{}) string {
	ordered := make([]string, 0, len(items))
	for item := range items {
		ordered = append(ordered, item)
	}
	sort.Strings(ordered)
	return strings.Join(ordered, ", ")
}

// CommandError wraps a command execution error with its trimmed output
// for cleaner error messages.
func CommandError(output []byte, err error) error {
	return fmt.Errorf("%s: %w", strings.TrimSpace(string(output)), err)
}
