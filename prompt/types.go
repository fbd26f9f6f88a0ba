// Package prompt models prompt templates: parsed documents, their
// frontmatter metadata, and chunks cut for dataset assembly.
package prompt

import "strings"

// Template represents a parsed prompt template file.
type Template struct {
	// ID is the stable template identifier derived from path and content.
	ID string `json:"id"`

	// Path is the file path as given by the caller.
	Path string `json:"path"`

	// Filename is the base filename.
	Filename string `json:"filename"`

	// Content is the raw file content.
	Content string `json:"content"`

	// Frontmatter contains parsed YAML frontmatter if present.
	Frontmatter map[string]any `json:"frontmatter,omitempty"`

	// Body is the content without frontmatter.
	Body string `json:"body"`

	// Hash is the content hash for staleness detection.
	Hash string `json:"hash"`
}

// HasFrontmatter returns true if the template has parsed frontmatter.
func (t *Template) HasFrontmatter() bool {
	return len(t.Frontmatter) > 0
}

// Title returns the frontmatter title, falling back to the first
// top-level heading in the body, then the filename.
func (t *Template) Title() string {
	if title, ok := t.Frontmatter["title"].(string); ok && title != "" {
		return title
	}
	if h := firstHeading(t.Body); h != "" {
		return h
	}
	return t.Filename
}

// firstHeading returns the text of the first H1 in content.
func firstHeading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(line[2:])
		}
	}
	return ""
}

// Meta is template metadata drawn from frontmatter.
type Meta struct {
	// Title is the display title.
	Title string `json:"title,omitempty"`

	// Summary is a brief description of the template.
	Summary string `json:"summary,omitempty"`

	// Category classifies the template (frontend, backend, deployment).
	Category string `json:"category,omitempty"`

	// Tags are free-form labels.
	Tags []string `json:"tags,omitempty"`

	// SourceURL records where an imported template came from.
	SourceURL string `json:"source_url,omitempty"`
}

// FrontmatterMeta extracts Meta from frontmatter. Returns nil when the
// frontmatter carries none of the recognized fields.
func (t *Template) FrontmatterMeta() *Meta {
	if !t.HasFrontmatter() {
		return nil
	}

	meta := &Meta{}

	if title, ok := t.Frontmatter["title"].(string); ok {
		meta.Title = title
	}
	if summary, ok := t.Frontmatter["summary"].(string); ok {
		meta.Summary = summary
	}
	if category, ok := t.Frontmatter["category"].(string); ok {
		meta.Category = category
	}
	if url, ok := t.Frontmatter["source_url"].(string); ok {
		meta.SourceURL = url
	}

	// YAML lists arrive as []any; coerce string members
	if tags, ok := t.Frontmatter["tags"].([]any); ok {
		for _, v := range tags {
			if s, ok := v.(string); ok {
				meta.Tags = append(meta.Tags, s)
			}
		}
	} else if tags, ok := t.Frontmatter["tags"].([]string); ok {
		meta.Tags = tags
	}

	if meta.Title == "" && meta.Summary == "" && meta.Category == "" &&
		meta.SourceURL == "" && len(meta.Tags) == 0 {
		return nil
	}

	return meta
}

// Chunk represents a section of a template cut for dataset assembly.
type Chunk struct {
	// ParentID is the ID of the parent template.
	ParentID string `json:"parent_id"`

	// Index is the chunk sequence number.
	Index int `json:"index"`

	// Section is the heading the chunk falls under.
	Section string `json:"section,omitempty"`

	// Content is the chunk text.
	Content string `json:"content"`

	// TokenCount is the estimated token count.
	TokenCount int `json:"token_count"`
}
