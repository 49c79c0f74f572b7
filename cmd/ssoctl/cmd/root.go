package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/emontalvo610/sso-oauth/backend"
	"github.com/emontalvo610/sso-oauth/cache"
)

var (
	apiURL     string
	timeoutSec int

	apiClient *backend.Client
)

var rootCmd = &cobra.Command{
	Use:   "ssoctl",
	Short: "ssoctl is a CLI tool to interact with the SSO authentication API",
	Long:  `A command-line interface for checking link secrets, bearer tokens, and account lookups against the remote authentication API, the same way the front door does.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if apiURL == "" {
			apiURL = os.Getenv("API_URL")
		}
		if apiURL == "" {
			return fmt.Errorf("no API URL configured: pass --api-url or set API_URL")
		}

		secrets := cache.NewMemorySecretCache(time.Minute)
		apiClient = backend.NewClient(backend.Config{
			BaseURL:     apiURL,
			Timeout:     time.Duration(timeoutSec) * time.Second,
			SecretCache: secrets,
		})
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "base URL of the authentication API (defaults to $API_URL)")
	rootCmd.PersistentFlags().IntVar(&timeoutSec, "timeout", 10, "per-call timeout in seconds")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(codecCmd)
}
