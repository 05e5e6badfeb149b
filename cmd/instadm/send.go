package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"instadm/pkg/logger"
	"instadm/pkg/message"
	"instadm/pkg/outreach"
	"instadm/pkg/pacing"
)

var (
	sendLimit  int
	sendModel  string
	sendDryRun bool
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Generate and deliver messages to pending contacts",
	Long: `Generate one personalized direct message for each pending contact and
deliver them through the authenticated session.

Messages are written in the contact's detected language and promote the
title configured for that language. Delivery is paced with several seconds
between sends; a rate-limit signal from Instagram stops the rest of the
batch. A contact is marked as contacted only after its message was
confirmed sent, so interrupted runs can be resumed safely.

Requires OPENAI_API_KEY in the environment or a .env file.`,
	Example: `  # Message up to the configured number of pending contacts
  instadm send

  # Message at most 5 contacts
  instadm send --limit 5

  # Preview the generated messages without sending
  instadm send --dry-run`,
	Args: cobra.NoArgs,
	Run:  runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().IntVar(&sendLimit, "limit", 0, "maximum messages to send (default from config)")
	sendCmd.Flags().StringVar(&sendModel, "model", "", "chat-completion model to use")
	sendCmd.Flags().BoolVar(&sendDryRun, "dry-run", false, "generate and print messages without sending")
}

func runSend(cmd *cobra.Command, args []string) {
	flags := make(map[string]interface{})
	if sendLimit > 0 {
		flags["limit"] = sendLimit
	}
	if sendModel != "" {
		flags["model"] = sendModel
	}
	cfg := loadConfig(flags)
	log := logger.GetLogger()

	if cfg.Generation.APIKey == "" {
		fatal("OPENAI_API_KEY is not set", nil)
	}

	contacts := openStore(cfg)
	defer contacts.Close()

	ctx := context.Background()

	pending, err := contacts.ListPending(ctx, cfg.Outreach.MessageLimit, cfg.Outreach.OnlyPublic)
	if err != nil {
		fatal("failed to list pending contacts", err)
	}
	if len(pending) == 0 {
		fmt.Println("No pending contacts to message.")
		return
	}
	fmt.Printf("Generating messages for %d contacts...\n", len(pending))

	generator := message.NewOpenAIGenerator(cfg.Generation.APIKey, cfg.Generation.Model, cfg.Generation.Books, log)
	msgs, err := outreach.BuildMessages(ctx, contacts, generator, pending,
		pacing.NewUniform(cfg.Pacing.GenerationMin, cfg.Pacing.GenerationMax), log)
	if err != nil {
		fatal("failed to generate messages", err)
	}
	if len(msgs) == 0 {
		fmt.Println("No messages could be generated.")
		return
	}

	if sendDryRun {
		for _, msg := range msgs {
			fmt.Printf("--- @%s (%s)\n%s\n\n", msg.Username, msg.Language, msg.Text)
		}
		fmt.Printf("%d messages generated, nothing sent.\n", len(msgs))
		return
	}

	creds := resolveCredentials()
	sessions := newSessionManager(cfg, creds)
	sess, err := sessions.Establish(ctx)
	if err != nil {
		fatal("failed to establish session", err)
	}

	var pacer pacing.Pacer = pacing.NewUniform(cfg.Pacing.SendMin, cfg.Pacing.SendMax)
	if cfg.Pacing.MaxPerHour > 0 {
		pacer = pacing.NewBudget(pacer, cfg.Pacing.MaxPerHour, time.Hour)
	}

	dispatcher := outreach.NewDispatcher(sessions, contacts, pacer, log)
	sent, _, err := dispatcher.Dispatch(ctx, sess, msgs)
	if err != nil {
		fmt.Printf("Sent %d of %d messages before stopping: %v\n", sent, len(msgs), err)
		return
	}
	fmt.Printf("Sent %d of %d messages.\n", sent, len(msgs))
}
