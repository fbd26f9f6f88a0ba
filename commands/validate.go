package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dislovemartin/prompts/report"
	"github.com/dislovemartin/prompts/validator"
)

func newValidateCmd(app *App) *cobra.Command {
	var (
		outputDir   string
		rulesetPath string
	)

	cmd := &cobra.Command{
		Use:   "validate <glob>...",
		Short: "Score templates against the weighted criteria table",
		Long: `Validate scores each matched template against the criteria table,
writes one report per template plus a run summary, and classifies every
template from Rejected up to Approved for production.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputDir == "" {
				outputDir = app.Config.Validate.OutputDir
			}
			if rulesetPath == "" {
				rulesetPath = app.Config.Validate.Ruleset
			}

			rs := validator.DefaultRuleset()
			if rulesetPath != "" {
				loaded, err := validator.LoadRuleset(rulesetPath)
				if err != nil {
					return fmt.Errorf("load ruleset: %w", err)
				}
				rs = loaded
			}

			files, err := resolveBatch(app, args)
			if err != nil || len(files) == 0 {
				return err
			}

			return runValidate(app, rs, files, outputDir)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Report output directory")
	cmd.Flags().StringVar(&rulesetPath, "ruleset", "", "YAML criteria table overriding the built-in one")

	return cmd
}

// runValidate scores each file in order. Unreadable files are skipped;
// a report that cannot be written fails only that file.
func runValidate(app *App, rs *validator.Ruleset, files []string, outputDir string) error {
	renderer := report.NewRenderer()
	writer := report.NewWriter(outputDir)
	summary := report.NewSummary("Validation Summary")

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			app.Logger.Warn("skipping unreadable file", "path", file, "error", err)
			continue
		}

		rep := validator.BuildReport(file, string(content), rs)
		summary.AddValidation(rep)

		path, err := writer.WriteDocument(file, "-validation.md", renderer.RenderValidation(rep))
		if err != nil {
			app.Logger.Warn("could not write report", "path", file, "error", err)
			continue
		}

		app.Logger.Info("validated template",
			"path", file,
			"percent", rep.Percent,
			"recommendation", rep.Recommendation,
			"report", path)
	}

	path, err := writer.WriteNamed("validation-summary.md", renderer.RenderSummary(summary))
	if err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	app.Logger.Info("validation complete",
		"files", len(files),
		"mean_percent", summary.MeanPercent(),
		"summary", path)
	return nil
}
