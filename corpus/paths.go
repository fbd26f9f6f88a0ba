// Package corpus resolves prompt template files from glob patterns and
// watches them for changes.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Resolve expands glob patterns to concrete template files.
// Supports single-level wildcards (*) and recursive wildcards (**).
//
// Examples:
//   - "prompts/*.md" → every markdown file directly under prompts/
//   - "prompts" → every markdown file under prompts/ recursively
//   - "guide.md" → the file itself
//
// Matches within one pattern are sorted; patterns keep argument order.
// Duplicates across patterns are dropped. A pattern matching nothing
// contributes no files and no error: empty batches are the caller's
// decision to report.
func Resolve(patterns []string) ([]string, error) {
	var resolved []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		paths, err := resolvePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("resolve pattern %q: %w", pattern, err)
		}

		for _, p := range paths {
			if !seen[p] {
				seen[p] = true
				resolved = append(resolved, p)
			}
		}
	}

	return resolved, nil
}

// resolvePattern expands a single pattern to regular files.
func resolvePattern(pattern string) ([]string, error) {
	if !containsGlob(pattern) {
		info, err := os.Stat(pattern)
		if err != nil {
			return nil, err
		}

		// A bare directory means every markdown file underneath it.
		if info.IsDir() {
			return globFiles(filepath.Join(pattern, "**", "*.md"))
		}

		return []string{pattern}, nil
	}

	return globFiles(pattern)
}

// globFiles expands a glob and filters to regular files, sorted.
func globFiles(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("glob error: %w", err)
	}

	var files []string
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil {
			continue // Skip paths that can't be stat'd
		}
		if info.Mode().IsRegular() {
			files = append(files, match)
		}
	}

	sort.Strings(files)
	return files, nil
}

// containsGlob checks if a pattern contains glob characters.
// doublestar adds brace alternation on top of the usual set.
func containsGlob(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
