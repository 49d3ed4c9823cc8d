package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is the application version (set during build).
	Version = "dev"

	// Commit is the git commit hash (set during build).
	Commit = "unknown"

	// BuildDate is the build date (set during build).
	BuildDate = "unknown"
)

// errRunFailed is returned by the run command when the verdict is false.
// Its failure has already been logged.
var errRunFailed = errors.New("synthetic monitor run failed")

var configFile string

var rootCmd = &cobra.Command{
	Use:           "monitor",
	Short:         "Synthetic browser monitor",
	Long:          `Drives a real browser through the login, federated login and version check flows of a hosted application and reports a pass/fail verdict.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errRunFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
