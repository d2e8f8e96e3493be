package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/QuentinCody/intuit-mcp-server/internal/config"
	"github.com/QuentinCody/intuit-mcp-server/internal/oauth"
)

// Exit codes for CLI commands.
// These follow common conventions and provide semantic codes for scripting.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfigError indicates missing or invalid configuration.
	ExitCodeConfigError = 2
	// ExitCodeAuthFailed indicates the OAuth token refresh failed.
	ExitCodeAuthFailed = 3
)

// rootCmd represents the base command for the intuit-mcp-server application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "intuit-mcp-server",
	Short: "MCP server bridging AI assistants to the Intuit QuickBooks API",
	Long: `intuit-mcp-server exposes the Intuit QuickBooks GraphQL API to AI
assistants over the Model Context Protocol. It manages the OAuth 2.0
credential lifecycle (token caching, refresh, retry on expiry) so the
assistant only has to supply GraphQL queries.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the
// application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// It initializes and executes the root command, which in turn handles
// subcommands and flags. This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "intuit-mcp-server version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode determines the appropriate exit code based on the error type.
func getExitCode(err error) int {
	var validationErr *config.ValidationError
	if errors.As(err, &validationErr) {
		return ExitCodeConfigError
	}

	var authErr *oauth.AuthError
	if errors.As(err, &authErr) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}
