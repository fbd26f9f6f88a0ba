// Package parser parses prompt template files.
package parser

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dislovemartin/prompts/prompt"
)

// Parser parses markdown templates with optional YAML frontmatter.
type Parser struct{}

// New creates a new template parser.
func New() *Parser {
	return &Parser{}
}

// Parse parses a template, extracting frontmatter and body.
func (p *Parser) Parse(path string, content []byte) (*prompt.Template, error) {
	tpl := &prompt.Template{
		ID:       generateID(path, content),
		Path:     path,
		Filename: filepath.Base(path),
		Content:  string(content),
		Hash:     ContentHash(content),
	}

	str := string(content)
	if strings.HasPrefix(str, "---\n") || strings.HasPrefix(str, "---\r\n") {
		frontmatter, body, err := extractFrontmatter(str)
		if err != nil {
			// Unparseable frontmatter: treat the whole file as body
			tpl.Body = str
		} else {
			tpl.Frontmatter = frontmatter
			tpl.Body = body
		}
	} else {
		tpl.Body = str
	}

	return tpl, nil
}

// extractFrontmatter parses YAML frontmatter from template content.
// Returns the parsed frontmatter map, the remaining body, and any error.
func extractFrontmatter(content string) (map[string]any, string, error) {
	const delimiter = "---"

	// Skip the opening delimiter
	start := len(delimiter)
	if len(content) > start && content[start] == '\r' {
		start++
	}
	if len(content) > start && content[start] == '\n' {
		start++
	}

	// Find the closing delimiter
	closeIdx := strings.Index(content[start:], "\n"+delimiter)
	if closeIdx == -1 {
		closeIdx = strings.Index(content[start:], "\r\n"+delimiter)
	}
	if closeIdx == -1 {
		return nil, content, fmt.Errorf("no closing frontmatter delimiter")
	}

	yamlContent := content[start : start+closeIdx]

	// Body starts after the closing delimiter and its newline
	bodyStart := start + closeIdx + 1 + len(delimiter)
	for bodyStart < len(content) && (content[bodyStart] == '\n' || content[bodyStart] == '\r') {
		bodyStart++
	}

	body := ""
	if bodyStart < len(content) {
		body = content[bodyStart:]
	}

	var frontmatter map[string]any
	if err := yaml.Unmarshal([]byte(yamlContent), &frontmatter); err != nil {
		return nil, content, fmt.Errorf("parse YAML frontmatter: %w", err)
	}

	return frontmatter, body, nil
}

// generateID creates a stable template ID from path and content hash.
func generateID(path string, content []byte) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	name = sanitizeID(name)

	// Short hash suffix keeps IDs unique across same-named files
	hash := sha256.Sum256(content)
	shortHash := hex.EncodeToString(hash[:])[:12]

	return fmt.Sprintf("tpl.%s.%s", name, shortHash)
}

// sanitizeID makes a string safe for use as an identifier.
func sanitizeID(s string) string {
	var buf bytes.Buffer
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z':
			buf.WriteRune(r)
		case r >= '0' && r <= '9':
			buf.WriteRune(r)
		case r == '-' || r == '_' || r == ' ':
			buf.WriteRune('-')
		}
	}
	return buf.String()
}

// ContentHash computes a SHA256 hash of the content.
func ContentHash(content []byte) string {
	hash := sha256.Sum256(content)
	return hex.EncodeToString(hash[:])
}
