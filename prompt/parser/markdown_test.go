package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Parse_NoFrontmatter(t *testing.T) {
	p := New()

	content := `# Dashboard Generator

You are a Next.js engineer.

## Requirements

Some content here.
`

	tpl, err := p.Parse("prompts/dashboard.md", []byte(content))
	require.NoError(t, err)

	assert.NotEmpty(t, tpl.ID)
	assert.Equal(t, "prompts/dashboard.md", tpl.Path)
	assert.Equal(t, "dashboard.md", tpl.Filename)
	assert.Equal(t, content, tpl.Content)
	assert.Equal(t, content, tpl.Body)
	assert.NotEmpty(t, tpl.Hash)
	assert.False(t, tpl.HasFrontmatter())
}

func TestParser_Parse_WithFrontmatter(t *testing.T) {
	p := New()

	content := `---
title: Dashboard Generator
category: frontend
summary: Scaffolds an analytics dashboard
tags:
  - nextjs
  - typescript
---
# Dashboard Generator

Template body here.
`

	tpl, err := p.Parse("dashboard.md", []byte(content))
	require.NoError(t, err)

	assert.NotEmpty(t, tpl.ID)
	assert.True(t, tpl.HasFrontmatter())

	assert.Equal(t, "Dashboard Generator", tpl.Frontmatter["title"])
	assert.Equal(t, "frontend", tpl.Frontmatter["category"])

	tags, ok := tpl.Frontmatter["tags"].([]any)
	require.True(t, ok)
	assert.Len(t, tags, 2)

	// Body excludes the frontmatter block
	assert.True(t, len(tpl.Body) < len(tpl.Content))
	assert.Contains(t, tpl.Body, "# Dashboard Generator")
	assert.NotContains(t, tpl.Body, "category: frontend")
}

func TestParser_Parse_UnclosedFrontmatter(t *testing.T) {
	p := New()

	content := `---
category: frontend

# No closing delimiter

Content here.
`

	tpl, err := p.Parse("test.md", []byte(content))
	require.NoError(t, err)

	assert.False(t, tpl.HasFrontmatter())
	assert.Equal(t, content, tpl.Body)
}

func TestParser_Parse_MalformedYAML(t *testing.T) {
	p := New()

	content := `---
category: [unclosed array
---
# Test

Content.
`

	tpl, err := p.Parse("test.md", []byte(content))
	require.NoError(t, err)

	assert.False(t, tpl.HasFrontmatter())
	assert.Equal(t, content, tpl.Body)
}

func TestParser_Parse_WindowsLineEndings(t *testing.T) {
	p := New()

	content := "---\r\ncategory: frontend\r\n---\r\n# Title\r\n"

	tpl, err := p.Parse("test.md", []byte(content))
	require.NoError(t, err)

	assert.True(t, tpl.HasFrontmatter())
	assert.Equal(t, "frontend", tpl.Frontmatter["category"])
}

func TestGenerateID_Stability(t *testing.T) {
	content := []byte("# Test\n\nContent here.")

	id1 := generateID("test.md", content)
	id2 := generateID("test.md", content)

	assert.Equal(t, id1, id2)
}

func TestGenerateID_Uniqueness(t *testing.T) {
	id1 := generateID("test.md", []byte("# Test 1"))
	id2 := generateID("test.md", []byte("# Test 2"))

	assert.NotEqual(t, id1, id2)
}

func TestGenerateID_Prefix(t *testing.T) {
	id := generateID("My Template.md", []byte("content"))
	assert.Contains(t, id, "tpl.my-template.")
}

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"hello-world", "hello-world"},
		{"Hello World", "hello-world"},
		{"test_file", "test-file"},
		{"special!@#chars", "specialchars"},
		{"123-test", "123-test"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeID(tt.input))
		})
	}
}

func TestContentHash(t *testing.T) {
	content := []byte("test content")
	hash := ContentHash(content)

	// SHA256 produces 64 hex chars
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, ContentHash(content))
	assert.NotEqual(t, hash, ContentHash([]byte("different content")))
}
