package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/QuentinCody/intuit-mcp-server/internal/config"
	"github.com/QuentinCody/intuit-mcp-server/internal/intuit"
	"github.com/QuentinCody/intuit-mcp-server/internal/oauth"
	"github.com/QuentinCody/intuit-mcp-server/internal/server"
	"github.com/QuentinCody/intuit-mcp-server/pkg/logging"
)

// serveEnvFile points at an optional dotenv file loaded before the
// environment is read.
var serveEnvFile string

// serveConfigFile points at an optional YAML configuration file. Environment
// variables override its values.
var serveConfigFile string

// serveLogLevel sets the log verbosity. Logs go to stderr because stdout
// carries the MCP protocol frames.
var serveLogLevel string

// serveCmd defines the serve command structure. It starts the MCP server on
// stdio, the transport MCP clients use to launch and talk to the process.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Intuit MCP server on stdio",
	Long: `Starts the MCP server and communicates over stdin/stdout using the
Model Context Protocol. The server exposes a single tool,
intuit_execute_graphql, which runs GraphQL queries against the Intuit API
with automatic OAuth token management.

Configuration is read from environment variables (INTUIT_CLIENT_ID,
INTUIT_CLIENT_SECRET, INTUIT_REFRESH_TOKEN, INTUIT_ENVIRONMENT,
INTUIT_COMPANY_ID), optionally seeded from a dotenv file or a YAML
configuration file. Environment variables take precedence over file values.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command.
func runServe(cmd *cobra.Command, args []string) error {
	logging.Init(logging.ParseLevel(serveLogLevel), os.Stderr)

	cfg, err := config.Load(config.LoadOptions{
		EnvFile:    serveEnvFile,
		ConfigFile: serveConfigFile,
	})
	if err != nil {
		logging.Error("Serve", err, "Configuration error")
		return err
	}

	logging.Info("Serve", "Starting intuit-mcp-server %s (environment=%s)", GetVersion(), cfg.Environment)
	logging.Debug("Serve", "Client ID: %s", logging.TruncateSecret(cfg.ClientID))
	logging.Debug("Serve", "Refresh token: %s", logging.TruncateSecret(cfg.RefreshToken))
	if cfg.CompanyID != "" {
		logging.Info("Serve", "Default company ID: %s", cfg.CompanyID)
	} else {
		logging.Warn("Serve", "INTUIT_COMPANY_ID not set; queries must supply realmId and the REST fallback is disabled")
	}

	store := oauth.NewCredentialStore(oauth.CredentialStoreOptions{
		Refresher: oauth.NewRefresher(oauth.RefresherOptions{
			TokenEndpoint: intuit.TokenURL(cfg.Environment),
			ClientID:      cfg.ClientID,
			ClientSecret:  cfg.ClientSecret,
			RefreshToken:  cfg.RefreshToken,
		}),
	})

	executor := intuit.NewExecutor(intuit.ExecutorOptions{
		Store:     store,
		UserAgent: "IntuitMCPServer/" + GetVersion(),
	})

	clientOpts := intuit.ClientOptions{
		Executor:   executor,
		GraphQLURL: intuit.GraphQLURL(cfg.Environment),
		CompanyID:  cfg.CompanyID,
	}
	if cfg.CompanyID != "" {
		clientOpts.CompanyInfoURL = intuit.CompanyInfoURL(cfg.Environment, cfg.CompanyID)
	}

	mcpServer := server.NewMCPServer(intuit.NewClient(clientOpts), GetVersion())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return mcpServer.Start(ctx)
}

// init registers the serve command and its flags with the root command.
func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveEnvFile, "env-file", "", "Path to a dotenv file with Intuit credentials")
	serveCmd.Flags().StringVar(&serveConfigFile, "config", "", "Path to a YAML configuration file")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}
