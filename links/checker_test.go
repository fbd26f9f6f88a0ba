package links

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestChecker_InternalLinks(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "guide.md", "# Guide\n\n## Setup Steps\n\ncontent\n")
	doc := writeDoc(t, dir, "index.md",
		"# Local\n"+
			"\n"+
			"[ok](guide.md)\n"+
			"[missing](nope.md)\n"+
			"[anchor](guide.md#setup-steps)\n"+
			"[bad anchor](guide.md#nothing)\n"+
			"[self](#local)\n"+
			"[bad self](#absent)\n")

	c := NewChecker(Options{Root: dir, Logger: discardLogger()})
	res, err := c.CheckFiles(context.Background(), []string{doc})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Files)
	assert.Equal(t, 6, res.Links)
	require.Len(t, res.Issues, 3)
	assert.False(t, res.OK())

	assert.Equal(t, "nope.md", res.Issues[0].Target)
	assert.Equal(t, 4, res.Issues[0].Line)
	assert.Equal(t, "file not found", res.Issues[0].Reason)

	assert.Equal(t, "guide.md#nothing", res.Issues[1].Target)
	assert.Equal(t, 6, res.Issues[1].Line)
	assert.Contains(t, res.Issues[1].Reason, "anchor #nothing not found")

	assert.Equal(t, "#absent", res.Issues[2].Target)
	assert.Equal(t, 8, res.Issues[2].Line)
}

func TestChecker_SelfAnchorMissing(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "doc.md", "# Only Heading\n\n[jump](#elsewhere)\n")

	c := NewChecker(Options{Root: dir, Logger: discardLogger()})
	res, err := c.CheckFiles(context.Background(), []string{doc})
	require.NoError(t, err)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, "#elsewhere", res.Issues[0].Target)
}

func TestChecker_RootRelativeTargets(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "README.md", "# Top\n")
	doc := writeDoc(t, dir, "docs/deep/page.md", "[top](/README.md)\n[gone](/missing.md)\n")

	c := NewChecker(Options{Root: dir, Logger: discardLogger()})
	res, err := c.CheckFiles(context.Background(), []string{doc})
	require.NoError(t, err)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, "/missing.md", res.Issues[0].Target)
}

func TestChecker_DirectoryTargetIsValid(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "docs/guide.md", "# Guide\n")
	doc := writeDoc(t, dir, "index.md", "[docs](docs)\n")

	c := NewChecker(Options{Root: dir, Logger: discardLogger()})
	res, err := c.CheckFiles(context.Background(), []string{doc})
	require.NoError(t, err)
	assert.Empty(t, res.Issues)
}

func TestChecker_SkipsUnreadableFiles(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "ok.md", "no links here\n")

	c := NewChecker(Options{Root: dir, Logger: discardLogger()})
	res, err := c.CheckFiles(context.Background(), []string{filepath.Join(dir, "absent.md"), doc})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Files)
	assert.Empty(t, res.Issues)
}

func TestChecker_ExternalDisabled(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "doc.md", "[site](https://definitely-not-resolvable.invalid/x)\n")

	c := NewChecker(Options{Root: dir, Logger: discardLogger()})
	res, err := c.CheckFiles(context.Background(), []string{doc})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Links)
	assert.Empty(t, res.Issues)
}

func TestChecker_GuardedTargetsNotProbed(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "doc.md",
		"Run locally at [dev server](http://localhost:3000) first.\n"+
			"[private](http://10.0.0.1/admin)\n")

	c := NewChecker(Options{Root: dir, External: true, Logger: discardLogger()})
	res, err := c.CheckFiles(context.Background(), []string{doc})
	require.NoError(t, err)

	// Probing either target would fail; no issue means the guard
	// skipped them.
	assert.Empty(t, res.Issues)
}

func TestChecker_Probe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/no-head":
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := NewChecker(Options{Logger: discardLogger()})
	ctx := context.Background()

	assert.NoError(t, c.probe(ctx, srv.URL+"/ok"))
	assert.NoError(t, c.probe(ctx, srv.URL+"/no-head"), "HEAD rejection must fall back to GET")

	err := c.probe(ctx, srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestChecker_IssuesSorted(t *testing.T) {
	dir := t.TempDir()
	docB := writeDoc(t, dir, "b.md", "[one](gone1.md)\n")
	docA := writeDoc(t, dir, "a.md", "line one\n[two](gone2.md)\n[three](gone3.md)\n")

	c := NewChecker(Options{Root: dir, Logger: discardLogger()})
	res, err := c.CheckFiles(context.Background(), []string{docB, docA})
	require.NoError(t, err)

	require.Len(t, res.Issues, 3)
	assert.Equal(t, docA, res.Issues[0].File)
	assert.Equal(t, 2, res.Issues[0].Line)
	assert.Equal(t, 3, res.Issues[1].Line)
	assert.Equal(t, docB, res.Issues[2].File)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		target string
		want   targetKind
	}{
		{"", kindSkip},
		{"#section", kindFragment},
		{"https://example.com", kindExternal},
		{"http://example.com", kindExternal},
		{"//cdn.example.com/lib.js", kindExternal},
		{"mailto:team@example.com", kindSkip},
		{"tel:+15551234567", kindSkip},
		{"docs/guide.md", kindInternal},
		{"../sibling.md#part", kindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.target))
		})
	}
}

func TestChecker_EscapedFragments(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "guide.md", "# Guide\n\n## Café Menu\n\ncontent\n")
	doc := writeDoc(t, dir, "index.md",
		"# Index\n"+
			"\n"+
			"## Café Menu\n"+
			"\n"+
			"[self](#caf%C3%A9-menu)\n"+
			"[cross](guide.md#caf%C3%A9-menu)\n"+
			"[broken](#caf%C3%A9-missing)\n")

	c := NewChecker(Options{Root: dir, Logger: discardLogger()})
	res, err := c.CheckFiles(context.Background(), []string{doc})
	require.NoError(t, err)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, "#caf%C3%A9-missing", res.Issues[0].Target)
}
