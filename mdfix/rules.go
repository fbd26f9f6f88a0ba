// Package mdfix normalizes markdown template formatting. Rules are a
// declarative table applied in order; every rule is a pure text
// transform, so fixing already-fixed content is a no-op.
package mdfix

import (
	"regexp"
	"strings"
)

// Rule is one named formatting fix. Apply returns the transformed text
// and the number of lines it changed.
type Rule struct {
	Name        string
	Description string
	Apply       func(text string) (string, int)
}

// Pre-compiled regex patterns for the rule table.
var (
	trailingSpaceRe  = regexp.MustCompile(`[ \t]+$`)
	crampedHeadingRe = regexp.MustCompile(`^(#{1,6})([^#\s])`)
	listMarkerRe     = regexp.MustCompile(`^(\s*)[*+](\s+)`)
	fenceRe          = regexp.MustCompile("^(\\s*)(```+|~~~+)(.*)$")
)

// DefaultRules returns the rule table in application order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:        "trailing-whitespace",
			Description: "strip trailing spaces and tabs",
			Apply:       stripTrailingWhitespace,
		},
		{
			Name:        "heading-space",
			Description: "insert a space between # and heading text",
			Apply:       spaceHeadings,
		},
		{
			Name:        "list-marker",
			Description: "normalize unordered list markers to -",
			Apply:       normalizeListMarkers,
		},
		{
			Name:        "fence-language",
			Description: "default bare opening code fences to text",
			Apply:       defaultFenceLanguage,
		},
		{
			Name:        "blank-lines",
			Description: "collapse runs of three or more blank lines to two",
			Apply:       collapseBlankLines,
		},
		{
			Name:        "final-newline",
			Description: "end the file with exactly one newline",
			Apply:       singleFinalNewline,
		},
	}
}

// mapLines applies fn to each line, skipping lines inside fenced code
// blocks when skipFenced is set. The fence lines themselves are passed
// through unchanged.
func mapLines(text string, skipFenced bool, fn func(line string) string) (string, int) {
	lines := strings.Split(text, "\n")
	changed := 0
	inFence := false
	var fenceMarker string

	for i, line := range lines {
		if m := fenceRe.FindStringSubmatch(line); m != nil {
			marker := m[2][:3]
			if !inFence {
				inFence = true
				fenceMarker = marker
			} else if marker == fenceMarker {
				inFence = false
			}
			if skipFenced {
				continue
			}
		} else if skipFenced && inFence {
			continue
		}
		if fixed := fn(line); fixed != line {
			lines[i] = fixed
			changed++
		}
	}

	return strings.Join(lines, "\n"), changed
}

func stripTrailingWhitespace(text string) (string, int) {
	return mapLines(text, false, func(line string) string {
		return trailingSpaceRe.ReplaceAllString(line, "")
	})
}

func spaceHeadings(text string) (string, int) {
	return mapLines(text, true, func(line string) string {
		return crampedHeadingRe.ReplaceAllString(line, "$1 $2")
	})
}

func normalizeListMarkers(text string) (string, int) {
	return mapLines(text, true, func(line string) string {
		return listMarkerRe.ReplaceAllString(line, "$1-$2")
	})
}

// defaultFenceLanguage tags bare opening fences as text so downstream
// renderers never guess at highlighting. Closing fences stay bare.
func defaultFenceLanguage(text string) (string, int) {
	lines := strings.Split(text, "\n")
	changed := 0
	inFence := false
	var fenceMarker string

	for i, line := range lines {
		m := fenceRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		marker := m[2][:3]
		if inFence {
			if marker == fenceMarker {
				inFence = false
			}
			continue
		}
		inFence = true
		fenceMarker = marker
		if strings.TrimSpace(m[3]) == "" {
			lines[i] = m[1] + m[2] + "text"
			changed++
		}
	}

	return strings.Join(lines, "\n"), changed
}

func collapseBlankLines(text string) (string, int) {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	changed := 0
	blanks := 0
	inFence := false
	var fenceMarker string

	for _, line := range lines {
		if m := fenceRe.FindStringSubmatch(line); m != nil {
			marker := m[2][:3]
			if !inFence {
				inFence = true
				fenceMarker = marker
			} else if marker == fenceMarker {
				inFence = false
			}
		}
		if !inFence && strings.TrimSpace(line) == "" {
			blanks++
			if blanks > 2 {
				changed++
				continue
			}
		} else {
			blanks = 0
		}
		out = append(out, line)
	}

	return strings.Join(out, "\n"), changed
}

func singleFinalNewline(text string) (string, int) {
	trimmed := strings.TrimRight(text, "\n")
	fixed := trimmed + "\n"
	if fixed == text {
		return text, 0
	}
	return fixed, 1
}
