// Package main implements coverctl, a CLI that triggers extractions and
// watches their status through the polling coordinator.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// serverURL is the base URL of the coverline server
	serverURL   string
	secret      string
	intervalMs  int
	maxAttempts int
	verbose     bool

	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "coverctl",
	Short: "CLI for coverline extraction operations",
	Long: `coverctl triggers benefit-guide extractions on a coverline server and
watches documents until they reach a terminal status.

Flag defaults come from COVERLINE_POLL_* and COVERLINE_AUTH_SHARED_SECRET.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "coverline server URL")
	rootCmd.PersistentFlags().StringVar(&secret, "secret", "", "shared secret sent as a bearer token")
	rootCmd.PersistentFlags().IntVar(&intervalMs, "interval-ms", 0, "polling interval in milliseconds")
	rootCmd.PersistentFlags().IntVar(&maxAttempts, "max-attempts", 0, "status queries before giving up")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log each polling cycle")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
}
