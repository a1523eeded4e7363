package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"twitterdl/pkg/config"
)

// configCmd groups configuration subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage twitterdl configuration files.

Configuration is merged from these sources:
  - Environment variables (TWITTERDL_*)
  - A .env file in the working directory
  - Configuration file (YAML)
  - Default values`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created as '.twitterdl.yaml' in the current directory unless a
different path is given with the --config flag.`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources.
Sensitive values are masked.`,
	RunE: runConfigShow,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long:  `Validate a configuration file for syntax errors and invalid values.`,
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
}

const exampleConfig = `# twitterdl configuration file
#
# Every option here can also be set with a TWITTERDL_ environment variable,
# e.g. TWITTERDL_COOKIE, TWITTERDL_OUTPUT_DIR.

twitter:
  # Bearer token override. Leave empty to use the built-in app token.
  authorization: ""

  # Pre-authenticated session cookie for gated posts (optional). When unset,
  # gated posts trigger a login with stored credentials instead.
  cookie: ""

  # User agent for lookup requests. Leave empty for the default.
  user_agent: ""

  # Per-request timeout.
  request_timeout: 30s

proxy:
  enabled: false
  host: ""
  port: 0

download:
  # Output directory for downloaded media.
  output_dir: "./downloads"

  # Number of concurrent downloads.
  concurrent_downloads: 3

  # Per-download timeout.
  download_timeout: 60s

logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path. Leave empty to log to stderr.
  file: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	configPath := configFile
	if configPath == "" {
		configPath = ".twitterdl.yaml"
	}

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	fmt.Printf("Configuration file created: %s\n", configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Adjust the settings and run 'twitterdl config validate'")
	fmt.Println("2. Fetch a post with 'twitterdl fetch <tweet_url>'")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	displayCfg := *cfg
	displayCfg.Twitter.Authorization = maskValue(displayCfg.Twitter.Authorization)
	displayCfg.Twitter.Cookie = maskValue(displayCfg.Twitter.Cookie)

	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	fmt.Println("Current configuration:")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Environment variables (TWITTERDL_*)")
	if configFile != "" {
		fmt.Printf("2. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("2. Configuration file: (default locations)")
	}
	fmt.Println("3. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	path := configFile
	if path == "" {
		possiblePaths := []string{
			".twitterdl.yaml",
			".twitterdl.yml",
			filepath.Join(os.Getenv("HOME"), ".twitterdl.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "twitterdl", "config.yaml"),
		}
		for _, p := range possiblePaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
		if path == "" {
			return fmt.Errorf("no configuration file found; specify one with --config")
		}
	}

	fmt.Printf("Validating %s\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	fmt.Println("Configuration is valid")
	fmt.Println("\nSummary:")
	fmt.Printf("  Output directory: %s\n", cfg.Download.OutputDir)
	fmt.Printf("  Concurrent downloads: %d\n", cfg.Download.ConcurrentDownloads)
	fmt.Printf("  Request timeout: %s\n", cfg.Twitter.RequestTimeout)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
	if cfg.Proxy.Enabled {
		fmt.Printf("  Proxy: %s:%d\n", cfg.Proxy.Host, cfg.Proxy.Port)
	}
	return nil
}

func maskValue(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "***"
	}
	return s[:4] + "..." + s[len(s)-4:]
}
