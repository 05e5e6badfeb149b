package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"instadm/pkg/config"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage InstaDM configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (INSTADM_*)
  - Configuration file
  - Default values (lowest priority)`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as '.instadm.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging all sources. The
generation API key is never part of the output.`,
	Run: runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	configPath := configFile
	if configPath == "" {
		configPath = ".instadm.yaml"
	}

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintf(os.Stderr, "Configuration file already exists: %s\n", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	exampleConfig := `# InstaDM Configuration File
#
# This file contains all available configuration options.
# You can also use environment variables prefixed with INSTADM_
# For example: INSTADM_BATCH_SIZE, INSTADM_LOG_LEVEL
#
# The generation API key is read only from the OPENAI_API_KEY
# environment variable (a .env file works too) and is never stored here.

# Storage paths (defaults live under $HOME/.instadm)
# storage:
#   # Directory holding session artifacts and the contact database
#   data_directory: "/home/you/.instadm"
#
#   # Contact database path
#   database_path: "/home/you/.instadm/contacts.db"

# Pacing between platform calls
pacing:
  # Delay bounds between per-account profile lookups while fetching likers
  retrieval_min: 3.5s
  retrieval_max: 5.5s

  # Delay bounds between message generations
  generation_min: 3s
  generation_max: 5s

  # Delay bounds between message sends
  send_min: 6s
  send_max: 9s

  # Hard cap on sends per hour (0 disables the cap)
  max_per_hour: 0

# Outreach batch settings
outreach:
  # Likers fetched per batch
  # Range: 1-100
  batch_size: 10

  # Maximum messages sent per run
  # Range: 1-100
  message_limit: 10

  # Message only public accounts
  only_public: true

# Message generation
generation:
  # Chat-completion model
  model: "gpt-4o-mini"

  # Promoted title per ISO 639-1 language code
  books:
    en:
      title: "Darkness Symphony"
      link: "https://www.amazon.com/dp/B0DYSNXD4B"
    es:
      title: "Sinfonía de la Oscuridad"
      link: "https://www.amazon.es/dp/B0DV5NZ9RX"

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log file path (optional)
  # Leave empty to log to stderr only
  file: ""
`

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		fatal("failed to create configuration file", err)
	}

	fmt.Println("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file to adjust pacing and batch sizes")
	fmt.Println("2. Run 'instadm login' to store your Instagram credentials")
	fmt.Println("3. Start collecting likers with 'instadm fetch <post-url>'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		fatal("failed to load configuration", err)
	}

	// The APIKey field carries a yaml:"-" tag, so marshalling never leaks it.
	data, err := yaml.Marshal(cfg)
	if err != nil {
		fatal("failed to format configuration", err)
	}

	fmt.Println("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (INSTADM_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}
