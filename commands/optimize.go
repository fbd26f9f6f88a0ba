package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dislovemartin/prompts/optimizer"
	"github.com/dislovemartin/prompts/report"
)

func newOptimizeCmd(app *App) *cobra.Command {
	var (
		outputDir string
		codeCheck bool
	)

	cmd := &cobra.Command{
		Use:   "optimize <glob>...",
		Short: "Scan backend templates for optimization practices",
		Long: `Optimize scans each matched template for performance, security, and
reliability practice patterns, reports coverage per category, and emits
advice for every missing practice. With --code-check, fenced js/ts/tsx
blocks are parsed and syntax errors reported with line numbers.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputDir == "" {
				outputDir = app.Config.Optimize.OutputDir
			}
			if !codeCheck {
				codeCheck = app.Config.Optimize.CodeCheck
			}

			scanner, err := optimizer.NewScanner(optimizer.DefaultPatterns())
			if err != nil {
				return fmt.Errorf("build pattern scanner: %w", err)
			}

			files, err := resolveBatch(app, args)
			if err != nil || len(files) == 0 {
				return err
			}

			renderer := report.NewRenderer()
			writer := report.NewWriter(outputDir)
			summary := report.NewSummary("Optimization Summary")

			for _, file := range files {
				content, err := os.ReadFile(file)
				if err != nil {
					app.Logger.Warn("skipping unreadable file", "path", file, "error", err)
					continue
				}

				rep := scanner.Scan(file, string(content))
				if codeCheck {
					if err := scanner.CheckCode(cmd.Context(), rep, string(content)); err != nil {
						app.Logger.Warn("code check failed", "path", file, "error", err)
					}
				}
				summary.AddOptimization(rep)

				path, err := writer.WriteDocument(file, "-optimization.md", renderer.RenderOptimization(rep))
				if err != nil {
					app.Logger.Warn("could not write report", "path", file, "error", err)
					continue
				}

				app.Logger.Info("scanned template",
					"path", file,
					"coverage", rep.Coverage.Percent,
					"advice", len(rep.Advice),
					"report", path)
			}

			path, err := writer.WriteNamed("optimization-summary.md", renderer.RenderSummary(summary))
			if err != nil {
				return fmt.Errorf("write summary: %w", err)
			}

			app.Logger.Info("optimization scan complete",
				"files", len(files),
				"mean_percent", summary.MeanPercent(),
				"summary", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Report output directory")
	cmd.Flags().BoolVar(&codeCheck, "code-check", false, "Parse fenced js/ts blocks and report syntax errors")

	return cmd
}
