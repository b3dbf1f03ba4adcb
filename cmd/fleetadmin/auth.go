package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func loginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in as an admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := readPassword(cmd.InOrStdin(), cmd.OutOrStdout())
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				password = p
			}
			_, msg, err := a.auth.Login(cmd.Context(), email, password)
			if err != nil {
				return errors.New(msg)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "admin email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := a.auth.Logout()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.requireAdmin()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", u.Name, u.Email)
			return nil
		},
	}
}
