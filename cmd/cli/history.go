package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/axellelanca/shorturls/cmd"
	"github.com/axellelanca/shorturls/internal/auth"
)

var historyOwnerFlag string

// HistoryCmd lists an account's live links.
var HistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Lists the live links of an account, most recent first.",
	Run: func(c *cobra.Command, args []string) {
		a := openApp()
		defer a.Close()

		links, err := a.Links.History(context.Background(), auth.Account(historyOwnerFlag))
		if err != nil {
			log.Fatalf("Failed to list links: %v", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tCLICKS\tEXPIRES\tTARGET")
		for _, l := range links {
			expires := "never"
			if l.ExpiresAt != nil {
				expires = l.ExpiresAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", l.ShortCode, l.ClickCount, expires, l.LongURL)
		}
		w.Flush()
	},
}

func init() {
	HistoryCmd.Flags().StringVar(&historyOwnerFlag, "owner", "", "Account identifier")
	HistoryCmd.MarkFlagRequired("owner")
	cmd.RootCmd.AddCommand(HistoryCmd)
}
