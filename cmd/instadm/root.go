package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile  string
	logLevel    string
	accountName string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "instadm",
	Short: "Automated, human-paced Instagram outreach to the likers of a post",
	Long: `InstaDM finds the accounts that liked an Instagram post, stores them as
contacts, generates a short personalized message for each one in their own
language, and delivers the messages through Instagram's direct inbox at a
human pace.

Typical workflow:
  1. instadm login           store credentials and verify the session
  2. instadm fetch <url>     collect a batch of likers into the contact store
  3. instadm send            message pending contacts
  4. instadm inbox           check for replies

Sessions are persisted on disk and restored across runs; progress through a
post's likers is remembered per post URL, so repeated fetches walk forward
batch by batch.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.instadm.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "", "use specific stored account")

	// Version template
	rootCmd.SetVersionTemplate(`InstaDM {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
