// Package links extracts markdown links and heading anchors and checks
// them for broken targets, both inside the corpus and on the web.
package links

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Link is one link occurrence in a document.
type Link struct {
	Text   string
	Target string
	Line   int
	Image  bool
}

var (
	inlinePattern   = regexp.MustCompile(`(!?)\[([^\]]*)\]\(([^)]*)\)`)
	refDefPattern   = regexp.MustCompile(`^\s{0,3}\[([^\]]+)\]:\s*(\S+)`)
	autoLinkPattern = regexp.MustCompile(`<(https?://[^>\s]+)>`)
	codeSpanPattern = regexp.MustCompile("`[^`]*`")
	headingPattern  = regexp.MustCompile(`^\s{0,3}#{1,6}\s+(.*)$`)
)

// ExtractLinks returns every inline, image, reference-definition, and
// autolink occurrence with its 1-based line number. Fenced code blocks
// and inline code spans are not scanned. Each call matches afresh; no
// state is carried between documents.
func ExtractLinks(text string) []Link {
	var links []Link

	inFence := false
	for i, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		lineNo := i + 1
		scrubbed := codeSpanPattern.ReplaceAllString(line, " ")

		if m := refDefPattern.FindStringSubmatch(scrubbed); m != nil {
			if target := cleanTarget(m[2]); target != "" {
				links = append(links, Link{Text: m[1], Target: target, Line: lineNo})
			}
			continue
		}

		for _, m := range inlinePattern.FindAllStringSubmatch(scrubbed, -1) {
			target := cleanTarget(m[3])
			if target == "" {
				continue
			}
			links = append(links, Link{Text: m[2], Target: target, Line: lineNo, Image: m[1] == "!"})
		}

		for _, m := range autoLinkPattern.FindAllStringSubmatch(scrubbed, -1) {
			links = append(links, Link{Text: m[1], Target: m[1], Line: lineNo})
		}
	}

	return links
}

// cleanTarget strips angle brackets, titles, and surrounding space from
// a raw link destination.
func cleanTarget(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "<") && strings.HasSuffix(raw, ">") {
		return strings.TrimSuffix(strings.TrimPrefix(raw, "<"), ">")
	}
	if fields := strings.Fields(raw); len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// Anchors returns the set of heading anchors the document exposes,
// using GitHub's slug rules: lowercase, punctuation removed, spaces to
// hyphens, and repeated slugs numbered -1, -2, and so on.
func Anchors(text string) map[string]bool {
	anchors := make(map[string]bool)
	counts := make(map[string]int)

	inFence := false
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		m := headingPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		slug := slugifyHeading(m[1])
		if slug == "" {
			continue
		}

		n := counts[slug]
		counts[slug]++
		if n > 0 {
			slug = fmt.Sprintf("%s-%d", slug, n)
		}
		anchors[slug] = true
	}

	return anchors
}

// slugifyHeading converts heading text to its GitHub anchor slug.
func slugifyHeading(text string) string {
	// Closing ATX hashes and link syntax drop out before slugging.
	text = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(text), "#"))
	text = inlinePattern.ReplaceAllString(text, "$2")
	text = strings.NewReplacer("`", "", "*", "").Replace(text)

	var sb strings.Builder
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteByte('-')
		}
	}
	return strings.Trim(sb.String(), "-")
}
