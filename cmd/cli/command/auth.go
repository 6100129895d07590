package command

import (
	"fmt"
	"time"

	"commenthub/cmd/cli/authentication"
	"commenthub/cmd/cli/command/client"
	"commenthub/internal/microservices/http-api/dto"

	"github.com/spf13/cobra"
)

// authCmd represents the auth command for authentication related subcommands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Authenticate with the commenthub API server. Supports registration, login, logout and whoami.`,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new account",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.RegisterRequest
		req.Username, _ = cmd.Flags().GetString("username")
		req.Password, _ = cmd.Flags().GetString("password")
		req.Email, _ = cmd.Flags().GetString("email")

		response, err := client.NewHTTPClient(apiURL).Register(cmd.Context(), &req)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, successColor("✓ Registration successful! Please login to continue."))
		fmt.Fprintf(out, "UserID: %s\n", response.UserID)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login and store the access token in the OS keyring",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req dto.LoginRequest
		req.Username, _ = cmd.Flags().GetString("username")
		req.Password, _ = cmd.Flags().GetString("password")

		response, err := client.NewHTTPClient(apiURL).Login(cmd.Context(), &req)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		creds := &authentication.StoredCredentials{
			AccessToken: response.AccessToken,
			UserID:      response.UserID,
			Username:    response.Username,
			ExpiresAt:   time.Now().Add(time.Duration(response.ExpiresIn) * time.Second).Unix(),
		}
		if err := authentication.StoreTokens(creds); err != nil {
			return fmt.Errorf("store credentials: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s Logged in as %s\n", successColor("✓"), usernameColor(response.Username))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authentication.DeleteTokens(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), successColor("✓ Logged out."))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account the stored token belongs to",
	RunE: func(cmd *cobra.Command, args []string) error {
		httpClient, _, err := GetAuthenticatedClient()
		if err != nil {
			return err
		}
		resp, err := httpClient.Verify(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", usernameColor(resp.Username), resp.UserID)
		return nil
	},
}

func init() {
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(whoamiCmd)

	registerCmd.Flags().StringP("username", "u", "", "Username for the new account")
	registerCmd.Flags().StringP("password", "p", "", "Password for the new account")
	registerCmd.Flags().StringP("email", "e", "", "Email address for the new account")
	registerCmd.MarkFlagRequired("username")
	registerCmd.MarkFlagRequired("password")
	registerCmd.MarkFlagRequired("email")

	loginCmd.Flags().StringP("username", "u", "", "Username or email")
	loginCmd.Flags().StringP("password", "p", "", "Password for the account")
	loginCmd.MarkFlagRequired("username")
	loginCmd.MarkFlagRequired("password")
}
