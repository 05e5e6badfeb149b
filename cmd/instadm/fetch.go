package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"instadm/pkg/likers"
	"instadm/pkg/logger"
	"instadm/pkg/pacing"
	"instadm/pkg/store"
)

var fetchBatchSize int

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch <post-url>",
	Short: "Collect a batch of a post's likers into the contact store",
	Long: `Fetch the next batch of accounts that liked the given Instagram post and
store them as pending contacts.

Progress through the post's likers is remembered per URL: each run picks up
where the previous one stopped. When every liker has been processed the
stored position resets to zero, so newly arrived likes are picked up by a
later run.

Private accounts are skipped. Public accounts are enriched with profile
details and the language of their biography, which later selects the
language of the generated message.`,
	Example: `  # Fetch the next batch with the configured batch size
  instadm fetch https://www.instagram.com/p/DEmCZkWoVPk/

  # Fetch a larger batch
  instadm fetch https://www.instagram.com/p/DEmCZkWoVPk/ --batch-size 25`,
	Args: cobra.ExactArgs(1),
	Run:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().IntVar(&fetchBatchSize, "batch-size", 0, "likers per batch (default from config)")
}

func runFetch(cmd *cobra.Command, args []string) {
	postURL := strings.TrimSpace(args[0])

	flags := make(map[string]interface{})
	if fetchBatchSize > 0 {
		flags["batch-size"] = fetchBatchSize
	}
	cfg := loadConfig(flags)
	log := logger.GetLogger()

	contacts := openStore(cfg)
	defer contacts.Close()

	creds := resolveCredentials()
	sessions := newSessionManager(cfg, creds)

	ctx := context.Background()
	sess, err := sessions.Establish(ctx)
	if err != nil {
		fatal("failed to establish session", err)
	}

	offset, err := contacts.Offset(ctx, postURL)
	if err != nil {
		fatal("failed to read fetch position", err)
	}
	fmt.Printf("Fetching likers %d to %d...\n", offset, offset+cfg.Outreach.BatchSize)

	engine := likers.NewEngine(
		pacing.NewUniform(cfg.Pacing.RetrievalMin, cfg.Pacing.RetrievalMax),
		log,
	)

	page, err := engine.FetchPage(ctx, sess.Client, postURL, cfg.Outreach.BatchSize, offset)
	if err != nil {
		fatal("failed to fetch likers", err)
	}

	rows := make([]store.Contact, 0, len(page.Likers))
	for _, liker := range page.Likers {
		rows = append(rows, store.Contact{
			Pk:        liker.Account.Pk,
			Username:  liker.Account.Username,
			FullName:  liker.Account.FullName,
			IsPrivate: liker.Account.IsPrivate,
			Language:  liker.Language,
		})
	}
	added, err := contacts.InsertIfAbsent(ctx, rows)
	if err != nil {
		fatal("failed to save contacts", err)
	}

	if page.HasMore {
		if err := contacts.SetOffset(ctx, postURL, page.NextOffset); err != nil {
			fatal("failed to save fetch position", err)
		}
		fmt.Printf("Saved %d new contacts. More likers remain (%d of %d processed).\n",
			added, page.NextOffset, page.LikeCount)
	} else {
		if err := contacts.SetOffset(ctx, postURL, 0); err != nil {
			fatal("failed to save fetch position", err)
		}
		fmt.Printf("Saved %d new contacts. All likers of this post have been processed.\n", added)
	}
}
