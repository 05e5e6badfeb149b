package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var inboxAmount int

// inboxCmd represents the inbox command
var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Show recent direct-message threads",
	Long: `Show the most recent direct-message threads, one line per thread with the
other participant and the latest text message. Useful for spotting replies
to sent outreach messages.`,
	Example: `  # The ten most recent threads
  instadm inbox

  # More threads
  instadm inbox --amount 25`,
	Args: cobra.NoArgs,
	Run:  runInbox,
}

func init() {
	rootCmd.AddCommand(inboxCmd)

	inboxCmd.Flags().IntVar(&inboxAmount, "amount", 10, "number of threads to show")
}

func runInbox(cmd *cobra.Command, args []string) {
	cfg := loadConfig(nil)

	creds := resolveCredentials()
	sessions := newSessionManager(cfg, creds)

	sess, err := sessions.Establish(context.Background())
	if err != nil {
		fatal("failed to establish session", err)
	}

	threads, err := sess.Client.DirectThreads(inboxAmount)
	if err != nil {
		fatal("failed to fetch inbox", err)
	}
	if len(threads) == 0 {
		fmt.Println("No recent threads.")
		return
	}

	for _, thread := range threads {
		if len(thread.Users) == 0 || len(thread.Items) == 0 {
			continue
		}
		last := thread.Items[0].Text
		if last == "" {
			last = "(no text)"
		}
		fmt.Printf("%s: %s\n", thread.Users[0].Username, last)
	}
}
