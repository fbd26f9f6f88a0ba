// Package commands implements the prompts CLI subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dislovemartin/prompts/config"
)

// App carries the shared state every subcommand needs.
type App struct {
	Config *config.Config
	Logger *slog.Logger
}

// NewRoot builds the root command with all subcommands attached.
func NewRoot(version, buildTime string) *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	app := &App{}

	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Maintenance toolkit for the SolnAI prompt template corpus",
		Long: `Prompts maintains a corpus of markdown prompt-engineering templates:
it scores templates against weighted criteria, scans backend templates
for optimization practices, checks links, normalizes formatting,
assembles fine-tuning datasets, and imports web articles as templates.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(logLevel)
			slog.SetDefault(logger)
			app.Logger = logger

			cfg, err := loadConfig(configPath, logger)
			if err != nil {
				return err
			}
			app.Config = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newValidateCmd(app),
		newOptimizeCmd(app),
		newLinksCmd(app),
		newFixCmd(app),
		newDatasetCmd(app),
		newImportCmd(app),
		newWatchCmd(app),
		newVersionCmd(version, buildTime),
	)

	return cmd
}

// newLogger builds the slog text handler on stderr.
func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

// loadConfig loads an explicit config file, or the layered defaults.
func loadConfig(path string, logger *slog.Logger) (*config.Config, error) {
	if path != "" {
		cfg, err := config.LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		if err := cfg.Check(); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", path, err)
		}
		return cfg, nil
	}

	cfg, err := config.NewLoader(logger).Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newVersionCmd(version, buildTime string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "prompts version %s (build: %s)\n", version, buildTime)
		},
	}
}
