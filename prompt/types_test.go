package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_Title(t *testing.T) {
	tests := []struct {
		name string
		tpl  Template
		want string
	}{
		{
			name: "frontmatter title wins",
			tpl: Template{
				Filename:    "x.md",
				Frontmatter: map[string]any{"title": "From Frontmatter"},
				Body:        "# From Heading\n",
			},
			want: "From Frontmatter",
		},
		{
			name: "first heading as fallback",
			tpl: Template{
				Filename: "x.md",
				Body:     "intro text\n\n# Dashboard Generator\n\n# Second Heading\n",
			},
			want: "Dashboard Generator",
		},
		{
			name: "filename as last resort",
			tpl: Template{
				Filename: "dashboard.md",
				Body:     "no headings here\n",
			},
			want: "dashboard.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tpl.Title())
		})
	}
}

func TestTemplate_FrontmatterMeta(t *testing.T) {
	tpl := Template{
		Frontmatter: map[string]any{
			"title":      "Dashboard Generator",
			"summary":    "Scaffolds a dashboard",
			"category":   "frontend",
			"source_url": "https://example.com/guide",
			"tags":       []any{"nextjs", "typescript"},
		},
	}

	meta := tpl.FrontmatterMeta()
	require.NotNil(t, meta)

	assert.Equal(t, "Dashboard Generator", meta.Title)
	assert.Equal(t, "Scaffolds a dashboard", meta.Summary)
	assert.Equal(t, "frontend", meta.Category)
	assert.Equal(t, "https://example.com/guide", meta.SourceURL)
	assert.Equal(t, []string{"nextjs", "typescript"}, meta.Tags)
}

func TestTemplate_FrontmatterMeta_NoFrontmatter(t *testing.T) {
	tpl := Template{Body: "# Title\n"}
	assert.Nil(t, tpl.FrontmatterMeta())
}

func TestTemplate_FrontmatterMeta_UnrecognizedFields(t *testing.T) {
	tpl := Template{
		Frontmatter: map[string]any{
			"author": "jordan",
			"date":   "2026-01-01",
		},
	}
	assert.Nil(t, tpl.FrontmatterMeta())
}

func TestTemplate_FrontmatterMeta_StringSliceTags(t *testing.T) {
	tpl := Template{
		Frontmatter: map[string]any{
			"tags": []string{"a", "b"},
		},
	}

	meta := tpl.FrontmatterMeta()
	require.NotNil(t, meta)
	assert.Equal(t, []string{"a", "b"}, meta.Tags)
}
