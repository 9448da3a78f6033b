package cli

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/axellelanca/shorturls/cmd"
	"github.com/axellelanca/shorturls/internal/auth"
	"github.com/axellelanca/shorturls/internal/services"
)

var (
	longURLFlag   string
	codeFlag      string
	validityFlag  int64
	permanentFlag bool
	ownerFlag     string
)

// CreateCmd represents the 'create' command.
var CreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Creates a short URL from a long URL.",
	Long: `This command shortens the given long URL and prints the generated code.

Example:
  shorturls create --url="https://www.google.com/search?q=go+lang" --validity=3600
  shorturls create --url="https://go.dev" --code=golang --permanent --owner=alice`,
	Run: func(c *cobra.Command, args []string) {
		a := openApp()
		defer a.Close()

		in := services.CreateLinkInput{
			OriginalURL: longURLFlag,
			CustomCode:  codeFlag,
			IsPermanent: permanentFlag,
		}
		if c.Flags().Changed("validity") {
			in.ValiditySeconds = &validityFlag
		}

		caller := auth.Anonymous
		if ownerFlag != "" {
			caller = auth.Account(ownerFlag)
		}

		link, err := a.Links.CreateLink(context.Background(), in, caller)
		if err != nil {
			log.Fatalf("Failed to create short link: %v", err)
		}

		fmt.Println("Short URL created successfully:")
		fmt.Printf("Code: %s\n", link.ShortCode)
		fmt.Printf("Full URL: %s/%s\n", strings.TrimRight(cmd.Cfg.Server.BaseURL, "/"), link.ShortCode)
		if link.ExpiresAt != nil {
			fmt.Printf("Expires at: %s\n", link.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
		} else {
			fmt.Println("Permanent: yes")
		}
	},
}

func init() {
	CreateCmd.Flags().StringVar(&longURLFlag, "url", "", "The long URL to shorten")
	CreateCmd.Flags().StringVar(&codeFlag, "code", "", "Custom short code (3-30 chars of [A-Za-z0-9_-])")
	CreateCmd.Flags().Int64Var(&validityFlag, "validity", 0, "Validity in seconds (defaults to links.default_validity_seconds)")
	CreateCmd.Flags().BoolVar(&permanentFlag, "permanent", false, "Never expire (requires --owner)")
	CreateCmd.Flags().StringVar(&ownerFlag, "owner", "", "Account identifier owning the link")
	CreateCmd.MarkFlagRequired("url")

	cmd.RootCmd.AddCommand(CreateCmd)
}
