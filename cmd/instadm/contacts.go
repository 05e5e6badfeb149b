package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var contactsPending bool

// contactsCmd represents the contacts command
var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List stored contacts",
	Long: `List the contacts collected from fetched posts.

By default every stored contact is shown, newest first. With --pending only
public accounts that have not been messaged yet are listed.`,
	Example: `  # All stored contacts
  instadm contacts

  # Contacts still waiting for a message
  instadm contacts --pending`,
	Args: cobra.NoArgs,
	Run:  runContacts,
}

func init() {
	rootCmd.AddCommand(contactsCmd)

	contactsCmd.Flags().BoolVar(&contactsPending, "pending", false, "show only uncontacted public accounts")
}

func runContacts(cmd *cobra.Command, args []string) {
	cfg := loadConfig(nil)

	contacts := openStore(cfg)
	defer contacts.Close()

	ctx := context.Background()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	if contactsPending {
		pending, err := contacts.ListPending(ctx, cfg.Outreach.MessageLimit, true)
		if err != nil {
			fatal("failed to list pending contacts", err)
		}
		fmt.Fprintln(w, "USERNAME\tFULL NAME")
		for _, c := range pending {
			fmt.Fprintf(w, "%s\t%s\n", c.Username, c.FullName)
		}
		w.Flush()
		fmt.Printf("\n%d contacts pending.\n", len(pending))
		return
	}

	all, err := contacts.ListAll(ctx)
	if err != nil {
		fatal("failed to list contacts", err)
	}
	fmt.Fprintln(w, "USERNAME\tFULL NAME\tPRIVATE\tCONTACTED\tLANGUAGE")
	for _, c := range all {
		fmt.Fprintf(w, "%s\t%s\t%v\t%v\t%s\n", c.Username, c.FullName, c.IsPrivate, c.Contacted, c.Language)
	}
	w.Flush()
	fmt.Printf("\n%d contacts stored.\n", len(all))
}
