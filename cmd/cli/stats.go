package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/axellelanca/shorturls/cmd"
	customerrors "github.com/axellelanca/shorturls/internal/errors"
)

// StatsCmd represents the 'stats' command.
var StatsCmd = &cobra.Command{
	Use:   "stats [short-code]",
	Short: "Get statistics for a short URL",
	Long:  `Get click statistics for the provided short code.`,
	Args:  cobra.ExactArgs(1),
	Run:   runStats,
}

func init() {
	cmd.RootCmd.AddCommand(StatsCmd)
}

func runStats(c *cobra.Command, args []string) {
	shortCode := args[0]

	a := openApp()
	defer a.Close()

	stats, err := a.Links.GetLinkStats(context.Background(), shortCode)
	if err != nil {
		switch {
		case errors.Is(err, customerrors.ErrNotFound):
			fmt.Printf("Error: Short code '%s' not found\n", shortCode)
		case errors.Is(err, customerrors.ErrGone):
			fmt.Printf("Error: Short code '%s' has expired\n", shortCode)
		default:
			fmt.Printf("Error retrieving statistics: %v\n", err)
		}
		a.Close()
		os.Exit(1)
	}

	link := stats.Link
	fmt.Printf("Statistics for short code: %s\n", link.ShortCode)
	fmt.Printf("Long URL: %s\n", link.LongURL)
	fmt.Printf("Total clicks: %d (%d events stored)\n", link.ClickCount, stats.Events)
	fmt.Printf("Created at: %s\n", link.CreatedAt.Format("2006-01-02 15:04:05"))
	if link.IsPermanent {
		fmt.Println("Expires: never")
	} else if link.ExpiresAt != nil {
		fmt.Printf("Expires at: %s\n", link.ExpiresAt.Format("2006-01-02 15:04:05"))
	}
}
