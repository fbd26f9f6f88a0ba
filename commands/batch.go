package commands

import (
	"fmt"

	"github.com/dislovemartin/prompts/corpus"
)

// resolveBatch expands glob patterns into the batch file list. A zero
// match is not an error: the caller warns and exits cleanly.
func resolveBatch(app *App, patterns []string) ([]string, error) {
	files, err := corpus.Resolve(patterns)
	if err != nil {
		return nil, fmt.Errorf("resolve %v: %w", patterns, err)
	}
	if len(files) == 0 {
		app.Logger.Warn("no files matched", "patterns", patterns)
	}
	return files, nil
}
