package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information, set at build time.
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "twitterdl",
	Short: "Fetch tweet metadata and download media from Twitter/X posts",
	Long: `twitterdl resolves a single Twitter/X post into structured metadata:
author, statistics, and every attached photo, video, or animated GIF with
its MP4 variants.

Sensitivity-gated posts are handled automatically when credentials are
available: the tool logs in through the onboarding flow, obtains a session
cookie, and retries the lookup.

Credentials can come from:
  - Stored accounts (use 'twitterdl auth login' to store)
  - Environment variables (TWITTERDL_USERNAME and TWITTERDL_PASSWORD)
  - Command line flags`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .twitterdl.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.SetVersionTemplate(`twitterdl {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
