// Package cli implements the mcp-auth command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// BuildInfo is injected through ldflags.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// errSilent is returned by commands that already reported their failure
// and only need a non-zero exit status.
var errSilent = errors.New("silent failure")

// NewRootCommand builds the command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	root := &cobra.Command{
		Use:   "mcp-auth",
		Short: "OAuth 2.1 protected MCP server and plugin marketplace tooling",
		Long: `mcp-auth runs an MCP server that acts as an OAuth 2.1 resource server,
validates plugin marketplace checkouts, and fetches access tokens for testing.`,
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(`{{printf "mcp-auth version %s\n" .Version}}`)

	root.AddCommand(
		newServeCmd(info),
		newValidateCmd(),
		newTokenCmd(),
		newVersionCmd(info),
	)
	return root
}

// Execute runs the CLI until completion or SIGINT/SIGTERM.
func Execute(version, commit, date string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand(BuildInfo{Version: version, Commit: commit, Date: date})
	err := root.ExecuteContext(ctx)
	if err != nil && !errors.Is(err, errSilent) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}
