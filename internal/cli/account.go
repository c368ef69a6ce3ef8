package cli

import (
	"bufio"
	"errors"

	"github.com/spf13/cobra"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	cmd.AddCommand(newAccountRegisterCmd())
	cmd.AddCommand(newAccountPasswordCmd())

	return cmd
}

func newAccountRegisterCmd() *cobra.Command {
	var name, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				in := bufio.NewReader(cmd.InOrStdin())
				var err error
				if password, err = readSecret(cmd, in, "Password"); err != nil {
					return err
				}
				confirm, err := readSecret(cmd, in, "Confirm password")
				if err != nil {
					return err
				}
				if confirm != password {
					return errors.New("passwords do not match")
				}
			}

			body := map[string]string{"name": name, "password": password}
			var result AccountResult
			if err := client.Post("/api/v1/accounts", body, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Account name")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted for if omitted)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newAccountPasswordCmd() *cobra.Command {
	var current, next string

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change the password of the logged-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			var err error
			if current == "" {
				if current, err = readSecret(cmd, in, "Current password"); err != nil {
					return err
				}
			}
			if next == "" {
				if next, err = readSecret(cmd, in, "New password"); err != nil {
					return err
				}
			}

			body := map[string]string{"current_password": current, "new_password": next}
			if err := client.Post("/api/v1/account/password", body, nil); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Password changed")
			return nil
		},
	}

	cmd.Flags().StringVar(&current, "current", "", "Current password (prompted for if omitted)")
	cmd.Flags().StringVar(&next, "new", "", "New password (prompted for if omitted)")

	return cmd
}

func newLoginCmd() *cobra.Command {
	var name, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = readSecret(cmd, bufio.NewReader(cmd.InOrStdin()), "Password"); err != nil {
					return err
				}
			}

			body := map[string]string{"name": name, "password": password}
			var result SessionResult
			if err := client.Post("/api/v1/sessions", body, &result); err != nil {
				return err
			}

			if err := cfg.SaveToken(result.Token); err != nil {
				return err
			}
			client.SetToken(result.Token)

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Account name")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted for if omitted)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the saved token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Token == "" {
				return errors.New("not logged in")
			}
			if err := client.Delete("/api/v1/sessions"); err != nil {
				return err
			}
			if err := cfg.ClearToken(); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).PrintMessage("Logged out")
			return nil
		},
	}
}
