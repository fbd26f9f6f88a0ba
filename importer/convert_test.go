package importer

import (
	"net/url"
	"strings"
	"testing"
)

func TestExtractHTMLTitle(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		expected string
	}{
		{
			name:     "simple title",
			html:     "<html><head><title>My Page</title></head><body></body></html>",
			expected: "My Page",
		},
		{
			name:     "title with whitespace",
			html:     "<html><head><title>  Spaced Title  </title></head></html>",
			expected: "Spaced Title",
		},
		{
			name:     "no title",
			html:     "<html><head></head><body>Content</body></html>",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractHTMLTitle([]byte(tt.html))
			if got != tt.expected {
				t.Errorf("extractHTMLTitle() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestExtractMarkdownTitle(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		expected string
	}{
		{
			name:     "H1 at start",
			markdown: "# Hello World\n\nContent here",
			expected: "Hello World",
		},
		{
			name:     "H1 later in document",
			markdown: "Some text\n\n# Title Here\n\nMore content",
			expected: "Title Here",
		},
		{
			name:     "no H1",
			markdown: "## Section\n\nContent",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractMarkdownTitle(tt.markdown)
			if got != tt.expected {
				t.Errorf("extractMarkdownTitle() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCleanMarkdown(t *testing.T) {
	input := "# Title\n\n\n\n\n\nParagraph\n\n\n"
	got := cleanMarkdown(input)
	if strings.Contains(got, "\n\n\n\n") {
		t.Errorf("cleanMarkdown left a blank run longer than three newlines: %q", got)
	}
	if strings.HasSuffix(got, "\n") {
		t.Errorf("cleanMarkdown should trim trailing whitespace, got %q", got)
	}
}

func TestExtractMainContent(t *testing.T) {
	tests := []struct {
		name        string
		html        string
		wantContain string
		wantAbsent  string
	}{
		{
			name:        "prefers main element",
			html:        "<html><body><nav>Menu</nav><main><p>Article body</p></main></body></html>",
			wantContain: "Article body",
			wantAbsent:  "Menu",
		},
		{
			name:        "falls back to article element",
			html:        "<html><body><article><p>Story text</p></article><footer>foot</footer></body></html>",
			wantContain: "Story text",
			wantAbsent:  "foot",
		},
		{
			name:        "strips chrome without semantic container",
			html:        `<html><body><div class="sidebar">Links</div><p>Real content</p><script>x()</script></body></html>`,
			wantContain: "Real content",
			wantAbsent:  "Links",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractMainContent([]byte(tt.html))
			if !strings.Contains(got, tt.wantContain) {
				t.Errorf("extractMainContent() missing %q in %q", tt.wantContain, got)
			}
			if tt.wantAbsent != "" && strings.Contains(got, tt.wantAbsent) {
				t.Errorf("extractMainContent() should drop %q, got %q", tt.wantAbsent, got)
			}
		})
	}
}

func TestConverter_Convert(t *testing.T) {
	page := `<html><head><title>Deploy Guide</title></head><body>
<nav>Home | Docs</nav>
<main>
<h1>Deploying the App</h1>
<p>First paragraph about deployment with enough text to look like a real
article paragraph that extraction should keep.</p>
<ul><li>Step one</li><li>Step two</li></ul>
<pre><code>npm run build</code></pre>
</main>
</body></html>`

	pageURL, _ := url.Parse("https://example.com/docs/deploy")
	got, err := NewConverter().Convert([]byte(page), pageURL)
	if err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if got.Title == "" {
		t.Error("Convert() returned empty title")
	}
	if !strings.Contains(got.Markdown, "Step one") {
		t.Errorf("Convert() markdown missing list content: %q", got.Markdown)
	}
	if !strings.Contains(got.Markdown, "npm run build") {
		t.Errorf("Convert() markdown missing code block: %q", got.Markdown)
	}
	if strings.Contains(got.Markdown, "<p>") {
		t.Errorf("Convert() left raw HTML in markdown: %q", got.Markdown)
	}
}
