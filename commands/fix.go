package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dislovemartin/prompts/mdfix"
)

func newFixCmd(app *App) *cobra.Command {
	var (
		write bool
		list  bool
	)

	cmd := &cobra.Command{
		Use:   "fix <glob>...",
		Short: "Normalize markdown formatting in templates",
		Long: `Fix applies the formatting rule table to every matched template:
trailing whitespace, cramped headings, list markers, bare code fences,
blank line runs, and the final newline. Dry run by default; --write
rewrites changed files in place.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fixer := mdfix.New()

			if list {
				for _, rule := range fixer.Rules() {
					fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", rule.Name, rule.Description)
				}
				return nil
			}
			if len(args) == 0 {
				return fmt.Errorf("requires at least one glob pattern")
			}

			files, err := resolveBatch(app, args)
			if err != nil || len(files) == 0 {
				return err
			}

			changed := 0
			for _, file := range files {
				res, err := fixer.FixFile(file, write)
				if err != nil {
					app.Logger.Warn("skipping file", "path", file, "error", err)
					continue
				}
				if !res.Changed {
					continue
				}
				changed++

				for _, rc := range res.Rules {
					app.Logger.Info("rule applied",
						"path", file, "rule", rc.Rule, "changes", rc.Changes)
				}
			}

			verb := "would change"
			if write {
				verb = "changed"
			}
			app.Logger.Info("fix complete",
				"files", len(files), verb, changed)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Rewrite changed files in place")
	cmd.Flags().BoolVar(&list, "list", false, "List the formatting rules and exit")

	return cmd
}
