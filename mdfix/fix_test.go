package mdfix

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const messy = "#Title  \n\n\n\n* item one\n* item two\n\n```\ncode\n```"

func TestFixer_Fix(t *testing.T) {
	f := New()
	res := f.Fix("messy.md", messy)

	require.True(t, res.Changed)
	assert.Equal(t, "# Title\n\n\n- item one\n- item two\n\n```text\ncode\n```\n", res.Fixed)

	counts := map[string]int{}
	for _, rc := range res.Rules {
		counts[rc.Rule] = rc.Changes
	}
	assert.Equal(t, 1, counts["trailing-whitespace"])
	assert.Equal(t, 1, counts["heading-space"])
	assert.Equal(t, 2, counts["list-marker"])
	assert.Equal(t, 1, counts["fence-language"])
	assert.Equal(t, 1, counts["blank-lines"])
	assert.Equal(t, 1, counts["final-newline"])
}

func TestFixer_Fix_Idempotent(t *testing.T) {
	f := New()
	first := f.Fix("messy.md", messy)

	second := f.Fix("messy.md", first.Fixed)
	assert.False(t, second.Changed)
	assert.Equal(t, first.Fixed, second.Fixed)
	assert.Empty(t, second.Rules)
}

func TestFixer_Fix_CleanInput(t *testing.T) {
	clean := "# Title\n\nSome text.\n\n- one\n- two\n"
	res := New().Fix("clean.md", clean)
	assert.False(t, res.Changed)
	assert.Equal(t, clean, res.Fixed)
}

func TestFixer_FixFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "template.md")
	require.NoError(t, os.WriteFile(path, []byte(messy), 0o644))

	// Dry run leaves the file untouched
	f := New()
	res, err := f.FixFile(path, false)
	require.NoError(t, err)
	assert.True(t, res.Changed)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, messy, string(onDisk))

	// Write replaces the content
	res, err = f.FixFile(path, true)
	require.NoError(t, err)
	assert.True(t, res.Changed)

	onDisk, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, res.Fixed, string(onDisk))

	// No temp files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFixer_FixFile_Missing(t *testing.T) {
	_, err := New().FixFile(filepath.Join(t.TempDir(), "absent.md"), false)
	assert.Error(t, err)
}
