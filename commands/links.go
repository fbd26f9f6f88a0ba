package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dislovemartin/prompts/links"
)

func newLinksCmd(app *App) *cobra.Command {
	var (
		external    bool
		timeout     time.Duration
		concurrency int
		strict      bool
	)

	cmd := &cobra.Command{
		Use:   "links <glob>...",
		Short: "Check markdown links across templates",
		Long: `Links verifies internal file and #fragment targets in every matched
template. With --external, http(s) targets are probed over the network
with bounded concurrency; unsafe targets are never probed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !external {
				external = app.Config.Links.External
			}
			if !cmd.Flags().Changed("timeout") {
				if d, err := time.ParseDuration(app.Config.Links.Timeout); err == nil {
					timeout = d
				}
			}
			if !cmd.Flags().Changed("concurrency") {
				concurrency = app.Config.Links.Concurrency
			}

			files, err := resolveBatch(app, args)
			if err != nil || len(files) == 0 {
				return err
			}

			checker := links.NewChecker(links.Options{
				External:    external,
				Timeout:     timeout,
				Concurrency: concurrency,
				Logger:      app.Logger,
			})

			res, err := checker.CheckFiles(cmd.Context(), files)
			if err != nil {
				return fmt.Errorf("check links: %w", err)
			}

			for _, issue := range res.Issues {
				app.Logger.Warn("broken link",
					"file", issue.File,
					"line", issue.Line,
					"target", issue.Target,
					"reason", issue.Reason)
			}

			app.Logger.Info("link check complete",
				"files", len(files),
				"links", res.Links,
				"broken", len(res.Issues))

			if strict && !res.OK() {
				return fmt.Errorf("%d broken links found", len(res.Issues))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&external, "external", false, "Probe external http(s) links")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Per-request timeout for external checks")
	cmd.Flags().IntVar(&concurrency, "concurrency", 8, "Concurrent external checks")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when broken links are found")

	return cmd
}
