package command

// root.go defines the root command and the global flags.

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"commenthub/cmd/cli/authentication"
	"commenthub/cmd/cli/command/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	apiURL  string // API server root
	noColor bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "commenthub",
	Short: "commenthub - threaded comments from the terminal",
	Long: `commenthub is a command line client for the commenthub API. Use it to:
- Read the comment tree and post replies
- Edit comments shortly after posting, delete them and restore them
- Read and manage reply notifications, or watch them live

Use "commenthub [command] --help" to see all available commands.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

// Execute runs the root command; Ctrl-C cancels the command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorColor("Error:"), err)
		stop()
		os.Exit(1)
	}
}

func init() {
	defaultAPI := os.Getenv("COMMENTHUB_API")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", defaultAPI, "API server URL (env COMMENTHUB_API)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(notificationCmd)
}

// GetAuthenticatedClient returns a client carrying the stored access token.
func GetAuthenticatedClient() (*client.HTTPClient, *authentication.StoredCredentials, error) {
	creds, err := authentication.GetTokens()
	if err != nil {
		return nil, nil, err
	}
	httpClient := client.NewHTTPClient(apiURL)
	httpClient.SetToken(creds.AccessToken)
	return httpClient, creds, nil
}
