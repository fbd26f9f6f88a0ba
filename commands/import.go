package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dislovemartin/prompts/importer"
)

func newImportCmd(app *App) *cobra.Command {
	var (
		outputDir string
		category  string
	)

	cmd := &cobra.Command{
		Use:   "import <url>",
		Short: "Import a web page as a corpus template",
		Long: `Import fetches an HTTPS page, extracts the readable article, converts
it to markdown, and writes it into the corpus with provenance
frontmatter. Private addresses and insecure URLs are rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config.Importer
			if outputDir == "" {
				outputDir = app.Config.Corpus.Root
			}
			if category == "" {
				category = cfg.Category
			}

			timeout := 30 * time.Second
			if d, err := time.ParseDuration(cfg.Timeout); err == nil {
				timeout = d
			}

			imp := importer.New(importer.Options{
				Timeout:        timeout,
				MaxContentSize: int64(cfg.MaxSizeMB) * 1024 * 1024,
				Category:       category,
				Logger:         app.Logger,
			})

			path, err := imp.Import(cmd.Context(), args[0], outputDir)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Corpus directory for the imported template")
	cmd.Flags().StringVar(&category, "category", "", "Frontmatter category for the imported template")

	return cmd
}
