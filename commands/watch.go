package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dislovemartin/prompts/corpus"
	"github.com/dislovemartin/prompts/events"
	"github.com/dislovemartin/prompts/metrics"
	"github.com/dislovemartin/prompts/validator"
	"github.com/dislovemartin/prompts/watch"
)

func newWatchCmd(app *App) *cobra.Command {
	var (
		outputDir   string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-validate templates as they change",
		Long: `Watch monitors the corpus directory and re-validates every changed
template, rewriting its report. Metrics are served on --metrics-addr
when set, and report events are published to NATS when a URL is
configured.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := app.Config.Corpus.Root
			if len(args) == 1 {
				root = args[0]
			}
			if outputDir == "" {
				outputDir = app.Config.Validate.OutputDir
			}
			if !cmd.Flags().Changed("metrics-addr") {
				metricsAddr = app.Config.Watch.MetricsAddr
			}

			rs := validator.DefaultRuleset()
			if app.Config.Validate.Ruleset != "" {
				loaded, err := validator.LoadRuleset(app.Config.Validate.Ruleset)
				if err != nil {
					return fmt.Errorf("load ruleset: %w", err)
				}
				rs = loaded
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			publisher, err := events.Connect(app.Config.NATS.URL, app.Config.NATS.SubjectPrefix, app.Logger)
			if err != nil {
				return fmt.Errorf("connect event publisher: %w", err)
			}
			defer publisher.Close()
			if publisher == nil {
				app.Logger.Info("event publishing disabled, no NATS URL configured")
			}

			m := metrics.New()

			svc, err := watch.New(watch.Options{
				Root: root,
				Watch: corpus.WatchConfig{
					DebounceDelay:  app.Config.Watch.DebounceDelay,
					FileExtensions: app.Config.Corpus.Extensions,
					ExcludeDirs:    app.Config.Corpus.ExcludeDirs,
				},
				Ruleset:   rs,
				OutputDir: outputDir,
				Metrics:   m,
				Publisher: publisher,
				Logger:    app.Logger,
			})
			if err != nil {
				return err
			}

			group, ctx := errgroup.WithContext(ctx)
			if metricsAddr != "" {
				group.Go(func() error {
					return m.Serve(ctx, metricsAddr, app.Logger)
				})
			}
			group.Go(func() error {
				return svc.Run(ctx)
			})

			app.Logger.Info("watching for template changes", "root", root)
			return group.Wait()
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Report output directory")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Prometheus listen address (empty disables)")

	return cmd
}
