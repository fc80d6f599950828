package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesprial/mcp-auth/internal/logging"
	"github.com/jamesprial/mcp-auth/internal/plugin"
)

func newValidateCmd() *cobra.Command {
	var (
		output   string
		color    bool
		watch    bool
		debounce time.Duration
		strict   bool
	)

	cmd := &cobra.Command{
		Use:   "validate [marketplace-dir]",
		Short: "Validate a plugin marketplace checkout",
		Long: `Checks .cursor-plugin/marketplace.json, every listed plugin's
.cursor-plugin/plugin.json, and the skills/, agents/ and commands/
directories of each plugin. Exits non-zero when any error is found.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			if output != plugin.OutputTable && output != plugin.OutputJSON {
				return fmt.Errorf("--output must be %q or %q", plugin.OutputTable, plugin.OutputJSON)
			}

			out := cmd.OutOrStdout()

			if watch {
				logger, err := logging.New(cmd.ErrOrStderr(), "info", logging.FormatText, "watch")
				if err != nil {
					return err
				}
				return plugin.Watch(cmd.Context(), root, plugin.WatchOptions{Debounce: debounce, Logger: logger}, func(r *plugin.Report) {
					if err := plugin.Render(out, r, output, color); err != nil {
						logger.Error("rendering report", "error", err)
					}
				})
			}

			report, err := plugin.Validate(root)
			if err != nil {
				return err
			}
			if err := plugin.Render(out, report, output, color); err != nil {
				return err
			}
			if report.HasErrors() || (strict && report.Count(plugin.SeverityWarning) > 0) {
				return errSilent
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", plugin.OutputTable, "Output format: table or json")
	cmd.Flags().BoolVar(&color, "color", false, "Colorize table output")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-validate whenever files change")
	cmd.Flags().DurationVar(&debounce, "debounce", plugin.DefaultDebounce, "Quiet period before re-validating in watch mode")
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as failures")
	return cmd
}
