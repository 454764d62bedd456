package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tallyhq/tally/internal/cli"
)

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <email|phone>",
		Short: "Authenticate with the backend",
		Long: `Authenticate with an email address or phone number. Identifiers
containing '@' are sent as an email, anything else as a phone number. The
password is prompted and never echoed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := initClient()
			if err != nil {
				return err
			}

			password, err := promptPassword("Password: ")
			if err != nil {
				return err
			}

			result, err := client.Login(cmd.Context(), args[0], password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Logged in as %s <%s>", result.UserName, result.UserEmail)))
			return nil
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(_ *cobra.Command, _ []string) error {
			client, err := initClient()
			if err != nil {
				return err
			}

			if err := client.Logout(); err != nil {
				return fmt.Errorf("logout failed: %w", err)
			}

			fmt.Println(cli.FormatSuccess("Logged out"))
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(_ *cobra.Command, _ []string) error {
			client, err := initClient()
			if err != nil {
				return err
			}

			sess := client.Session()
			if sess == nil || !sess.Authenticated() {
				fmt.Println(cli.FormatWarning("Not logged in"))
				return nil
			}

			fmt.Printf("%s <%s>\n", sess.UserName, sess.UserEmail)
			fmt.Printf("logged in at %s\n", sess.LoggedInAt.Format("2006-01-02 15:04"))
			return nil
		},
	}
}

func passwordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Password reset operations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "request-reset <email>",
		Short: "Request a password reset email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := initClient()
			if err != nil {
				return err
			}

			if err := client.RequestPasswordReset(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("reset request failed: %w", err)
			}

			fmt.Println(cli.FormatSuccess("Reset email sent if the address is registered"))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "confirm <uid> <token>",
		Short: "Complete a password reset with the uid and token from the email",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := initClient()
			if err != nil {
				return err
			}

			newPassword, err := promptPassword("New password: ")
			if err != nil {
				return err
			}
			again, err := promptPassword("Repeat new password: ")
			if err != nil {
				return err
			}
			if newPassword != again {
				return fmt.Errorf("passwords do not match")
			}

			if err := client.ConfirmPasswordReset(cmd.Context(), args[0], args[1], newPassword); err != nil {
				return fmt.Errorf("password reset failed: %w", err)
			}

			fmt.Println(cli.FormatSuccess("Password updated"))
			return nil
		},
	})

	return cmd
}
