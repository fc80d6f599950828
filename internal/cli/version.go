package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd(info BuildInfo) *cobra.Command {
	var short, asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if short {
				_, err := fmt.Fprintln(out, info.Version)
				return err
			}

			if asJSON {
				b, err := json.MarshalIndent(map[string]string{
					"version": info.Version,
					"commit":  info.Commit,
					"date":    info.Date,
				}, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling version info: %w", err)
				}
				_, err = fmt.Fprintln(out, string(b))
				return err
			}

			_, err := fmt.Fprintf(out, "mcp-auth version %s (commit: %s, built: %s)\n", info.Version, info.Commit, info.Date)
			return err
		},
	}

	cmd.Flags().BoolVar(&short, "short", false, "Print version number only")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print version info as JSON")
	return cmd
}
