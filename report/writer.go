package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Writer places rendered reports into an output directory.
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at dir. The directory is created on
// first write.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir}
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// DocumentPath maps a source path to its report file: the source
// basename without extension plus the suffix, inside the output
// directory. "prompts/dashboard.md" with suffix "-validation.md"
// becomes "<dir>/dashboard-validation.md".
func (w *Writer) DocumentPath(source, suffix string) string {
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(w.dir, base+suffix)
}

// WriteDocument writes a per-source report and returns its path.
func (w *Writer) WriteDocument(source, suffix, content string) (string, error) {
	path := w.DocumentPath(source, suffix)
	if err := w.write(path, content); err != nil {
		return "", err
	}
	return path, nil
}

// WriteNamed writes a report under a fixed name, such as the run
// summary, and returns its path.
func (w *Writer) WriteNamed(name, content string) (string, error) {
	path := filepath.Join(w.dir, name)
	if err := w.write(path, content); err != nil {
		return "", err
	}
	return path, nil
}

func (w *Writer) write(path, content string) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
