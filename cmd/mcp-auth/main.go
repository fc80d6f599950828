// Command mcp-auth runs the OAuth 2.1 protected MCP server and the plugin
// marketplace validator.
package main

import (
	"os"

	"github.com/jamesprial/mcp-auth/internal/cli"
)

// version, commit, and date are set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := cli.Execute(version, commit, date); err != nil {
		os.Exit(1)
	}
}
