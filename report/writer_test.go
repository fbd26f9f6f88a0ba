package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_DocumentPath(t *testing.T) {
	w := NewWriter("out")

	tests := []struct {
		source string
		suffix string
		want   string
	}{
		{"prompts/dashboard.md", "-validation.md", filepath.Join("out", "dashboard-validation.md")},
		{"dashboard.md", "-validation.md", filepath.Join("out", "dashboard-validation.md")},
		{"a/b/c.template.md", "-optimization.md", filepath.Join("out", "c.template-optimization.md")},
		{"noext", "-validation.md", filepath.Join("out", "noext-validation.md")},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, w.DocumentPath(tt.source, tt.suffix))
	}
}

func TestWriter_WriteDocument(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	w := NewWriter(dir)

	path, err := w.WriteDocument("prompts/dashboard.md", "-validation.md", "# Report\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dashboard-validation.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Report\n", string(data))
}

func TestWriter_WriteNamed(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir)

	path, err := w.WriteNamed("validation-summary.md", "# Summary\n")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "validation-summary.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Summary\n", string(data))
}

func TestWriter_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "deep")
	w := NewWriter(dir)

	_, err := w.WriteNamed("validation-summary.md", "x")
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
