package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"

	"github.com/jamesprial/mcp-auth/internal/config"
	"github.com/jamesprial/mcp-auth/internal/logging"
	"github.com/jamesprial/mcp-auth/internal/mcp"
	"github.com/jamesprial/mcp-auth/internal/oauth"
	"github.com/jamesprial/mcp-auth/internal/todo"
	"github.com/jamesprial/mcp-auth/internal/transport"
)

const serverInstructions = "Todo list server. Each tool names the OAuth scope it requires."

func newServeCmd(info BuildInfo) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the OAuth 2.1 protected MCP server",
		Long: `Starts the MCP server over streamable HTTP. Every request to the MCP
endpoint needs a Bearer access token issued by one of the configured
authorization servers. Clients discover those servers at
/.well-known/oauth-protected-resource.

Configuration comes from environment variables (SERVER_BASE_URL,
OAUTH_AUTHORIZATION_SERVERS, OAUTH_AUDIENCE, ...) and, optionally, a
dotenv or YAML file given with --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			logger, err := logging.New(cmd.OutOrStdout(), cfg.LogLevel, cfg.LogFormat, "")
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			a, err := newApp(cfg, info, logger)
			if err != nil {
				return err
			}
			return a.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "dotenv or YAML config file")
	return cmd
}

// app is one wired server instance.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	server transport.Server
	router transport.Router
	store  *todo.Store
	jwks   oauth.JWKSClient
}

// newApp wires config -> oauth -> mcp -> transport.
func newApp(cfg *config.Config, info BuildInfo, logger *slog.Logger) (*app, error) {
	logger.Info("server configuration loaded", "config", cfg.String())

	services, err := oauth.NewOAuthServices(&oauth.Config{
		BaseURL:               cfg.BaseURL,
		Resource:              cfg.Resource,
		AuthorizationServers:  cfg.AuthorizationServers,
		Issuer:                cfg.Issuer,
		Audience:              cfg.Audience,
		ScopesSupported:       cfg.ScopesSupported,
		JWKSURI:               cfg.JWKSURI,
		JWKSCacheTTL:          cfg.JWKSCacheTTL,
		JWKSMinRefresh:        cfg.JWKSMinRefresh,
		ClockSkew:             cfg.ClockSkew,
		ResourceName:          cfg.MCPServerName,
		ResourceDocumentation: cfg.ResourceDocumentation,
		StaticMetadata:        cfg.ResourceMetadataJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("creating oauth services: %w", err)
	}
	logger.Info("oauth services initialized",
		"metadata_url", services.Metadata.GetMetadataURL(),
		"jwks_cache_ttl", cfg.JWKSCacheTTL,
		"clock_skew", cfg.ClockSkew,
	)

	store := todo.NewStore()
	registry := mcp.NewRegistry()
	if err := todo.Register(registry, store); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}

	version := cfg.MCPServerVersion
	if version == "" {
		version = info.Version
	}
	_, mcpHandler := mcp.NewMCPServices(&mcp.Config{
		ServerName:    cfg.MCPServerName,
		ServerVersion: version,
		Instructions:  serverInstructions,
		EndpointPath:  cfg.MCPPath,
		Scopes:        services.Scopes,
		Logger:        logger.With("subsystem", "mcp"),
	}, registry)
	logger.Info("mcp services initialized", "tools", len(registry.Tools()), "scope_enforcement", cfg.ScopeEnforcement)

	server, router, err := transport.NewTransportServices(&transport.Config{
		ServerConfig:    cfg,
		OAuthValidator:  services.Validator,
		MetadataService: services.Metadata,
		MCPHandler:      mcpHandler,
		ScopeResolver:   registry,
		ScopeChecker:    services.Scopes,
		Logger:          logger.With("subsystem", "http"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating transport services: %w", err)
	}

	return &app{cfg: cfg, logger: logger, server: server, router: router, store: store, jwks: services.JWKS}, nil
}

// run serves until ctx is done or the server fails, then shuts down.
func (a *app) run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting server", "addr", a.cfg.Addr, "mcp_path", a.cfg.MCPPath)
		errCh <- a.server.Start()
	}()

	select {
	case <-a.server.Ready():
		a.logger.Info("server listening", "addr", a.server.Addr(), "routes", transport.Routes(a.router))
		notify(a.logger, daemon.SdNotifyReady)
		go a.warmKeys(ctx)
	case err := <-errCh:
		return err
	}

	var serveErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received, stopping server gracefully")
	case serveErr = <-errCh:
		if serveErr != nil {
			a.logger.Error("server error", "error", serveErr)
		}
	}

	notify(a.logger, daemon.SdNotifyStopping)

	timeout := a.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.logger.Info("server stopped")
	return serveErr
}

// warmKeys fetches signing keys before the first request needs them. On
// failure keys are fetched on demand instead.
func (a *app) warmKeys(ctx context.Context) {
	if err := a.jwks.RefreshKeys(ctx); err != nil {
		a.logger.Warn("jwks prefetch failed", "error", err)
		return
	}
	a.logger.Info("jwks prefetched")
}

// notify tells systemd about a state change. Outside a unit with
// NOTIFY_SOCKET it does nothing.
func notify(logger *slog.Logger, state string) {
	sent, err := daemon.SdNotify(false, state)
	switch {
	case err != nil:
		logger.Warn("systemd notification failed", "state", state, "error", err)
	case sent:
		logger.Debug("systemd notified", "state", state)
	}
}
