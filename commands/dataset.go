package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dislovemartin/prompts/dataset"
	"github.com/dislovemartin/prompts/prompt/chunker"
	"github.com/dislovemartin/prompts/prompt/parser"
)

func newDatasetCmd(app *App) *cobra.Command {
	var (
		outputDir     string
		validationPct int
		minScore      int
	)

	cmd := &cobra.Command{
		Use:   "dataset <glob>...",
		Short: "Assemble a fine-tuning dataset from templates",
		Long: `Dataset converts matched templates into chat-format JSONL records
split into train and validation files. Oversized bodies are chunked
under a token budget; templates scoring below the minimum validation
percentage are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config.Dataset
			if outputDir == "" {
				outputDir = cfg.OutputDir
			}
			if !cmd.Flags().Changed("validation-pct") {
				validationPct = cfg.ValidationPct
			}
			if !cmd.Flags().Changed("min-score") {
				minScore = cfg.MinScore
			}

			ch, err := chunker.New(chunker.Config{
				TargetTokens: cfg.TargetTokens,
				MaxTokens:    cfg.MaxTokens,
				MinTokens:    cfg.MinTokens,
			})
			if err != nil {
				return fmt.Errorf("invalid chunker config: %w", err)
			}

			files, err := resolveBatch(app, args)
			if err != nil || len(files) == 0 {
				return err
			}

			builder := dataset.NewBuilder(dataset.Options{
				SystemPrompt:  cfg.SystemPrompt,
				MinScore:      minScore,
				ValidationPct: validationPct,
				Chunker:       ch,
				Logger:        app.Logger,
			})
			p := parser.New()

			var records []dataset.Record
			for _, file := range files {
				content, err := os.ReadFile(file)
				if err != nil {
					app.Logger.Warn("skipping unreadable file", "path", file, "error", err)
					continue
				}

				tpl, err := p.Parse(file, content)
				if err != nil {
					app.Logger.Warn("skipping unparseable file", "path", file, "error", err)
					continue
				}

				records = append(records, builder.Build(tpl)...)
			}

			writer := dataset.NewWriter(outputDir)
			train, validation, err := writer.Write(records)
			if err != nil {
				return fmt.Errorf("write dataset: %w", err)
			}

			app.Logger.Info("dataset written",
				"files", len(files),
				"train", train,
				"validation", validation,
				"train_path", writer.TrainPath(),
				"validation_path", writer.ValidationPath())
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Dataset output directory")
	cmd.Flags().IntVar(&validationPct, "validation-pct", 10, "Share of records routed to the validation split")
	cmd.Flags().IntVar(&minScore, "min-score", 50, "Skip templates below this validation percentage")

	return cmd
}
