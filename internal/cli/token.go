package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesprial/mcp-auth/internal/authclient"
)

// tokenEnvPrefix namespaces environment fallbacks for token flags, e.g.
// MCP_AUTH_CLIENT_SECRET for --client-secret.
const tokenEnvPrefix = "MCP_AUTH"

func newTokenCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Fetch an access token with the client-credentials grant",
		Long: `Requests an access token from the authorization server so the
protected MCP endpoint can be called with curl or an MCP inspector.

The token endpoint is taken from --token-url, discovered from --issuer
(RFC 8414), or discovered through the protected resource metadata of
--server (RFC 9728). Every flag can also be set through an environment
variable such as MCP_AUTH_CLIENT_SECRET.`,
		Example: `  mcp-auth token --server http://localhost:3002 --client-id cli \
    --scope todo:read --scope todo:write --audience http://localhost:3002/mcp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := authclient.New(authclient.Options{
				ClientID:            v.GetString("client-id"),
				ClientSecret:        v.GetString("client-secret"),
				TokenURL:            v.GetString("token-url"),
				AuthorizationServer: v.GetString("issuer"),
				ResourceServer:      v.GetString("server"),
				Scopes:              splitScopes(v.GetStringSlice("scope")),
				Audience:            v.GetString("audience"),
				Resource:            v.GetString("resource"),
			})
			if err != nil {
				return err
			}

			tok, err := client.Token(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !v.GetBool("json") {
				_, err := fmt.Fprintln(out, tok.AccessToken)
				return err
			}

			doc := map[string]any{
				"access_token": tok.AccessToken,
				"token_type":   tok.Type(),
			}
			if !tok.Expiry.IsZero() {
				doc["expiry"] = tok.Expiry.UTC().Format(time.RFC3339)
			}
			if scope, ok := tok.Extra("scope").(string); ok && scope != "" {
				doc["scope"] = scope
			}
			b, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(b))
			return err
		},
	}

	f := cmd.Flags()
	f.String("client-id", "", "OAuth client ID")
	f.String("client-secret", "", "OAuth client secret")
	f.String("token-url", "", "Token endpoint; skips discovery")
	f.String("issuer", "", "Authorization server issuer URL for discovery")
	f.String("server", "", "Protected MCP server base URL for discovery")
	f.StringSlice("scope", nil, "Scope to request (repeatable or comma-separated)")
	f.String("audience", "", "audience parameter for the token request")
	f.String("resource", "", "RFC 8707 resource parameter for the token request")
	f.Bool("json", false, "Print the token response as JSON")

	_ = v.BindPFlags(f)
	v.SetEnvPrefix(tokenEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return cmd
}

// splitScopes accepts scopes given as repeated flags, commas or spaces.
func splitScopes(values []string) []string {
	var out []string
	for _, value := range values {
		out = append(out, strings.Fields(strings.ReplaceAll(value, ",", " "))...)
	}
	return out
}
