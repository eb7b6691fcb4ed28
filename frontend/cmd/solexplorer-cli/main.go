package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/solexplorer/solexplorer/frontend/internal/apiclient"
	"github.com/solexplorer/solexplorer/shared/logger"
)

var (
	// Global flags
	backendURL string
	token      string
	timeout    time.Duration
	logLevel   string
	jsonLogs   bool

	client *apiclient.APIClient
)

var rootCmd = &cobra.Command{
	Use:   "solexplorer-cli",
	Short: "Terminal client of the solexplorer backend",
	Long: `solexplorer-cli reads profiles, activity and scores from a running
solexplorer-api and posts comments on behalf of a wallet.

Writes need a token, see issue-dev-token for development tokens.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.InitializeTo(os.Stderr, logLevel, jsonLogs)
		if backendURL == "" {
			return fmt.Errorf("--backend is required")
		}
		client = apiclient.New(backendURL, timeout).WithToken(token)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", envOr("SOLEXPLORER_BACKEND", "http://localhost:8080/api"), "backend base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("SOLEXPLORER_TOKEN"), "bearer token for writes")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "per request timeout")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "log-json", false, "log as JSON")

	rootCmd.AddCommand(feedCmd, profileCmd, scoreCmd, commentCmd)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
