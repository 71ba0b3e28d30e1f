package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"voltcart/internal/domain"
	"voltcart/internal/identity"
	"voltcart/internal/repos"
	"voltcart/internal/validate"
)

func newAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage back-office accounts",
	}
	cmd.AddCommand(newAdminCreateCommand())
	cmd.AddCommand(newAdminGrantCommand())
	return cmd
}

func newAdminCreateCommand() *cobra.Command {
	var email, name, password string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account with admin rights",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, ok := validate.Email(email)
			if !ok {
				return fmt.Errorf("invalid email %q", email)
			}
			if !validate.Password(password) {
				return errors.New("password must be 8 to 128 characters")
			}
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			idp := identity.NewLocal(repos.NewUserRepo(rt.db), rt.cfg.SigningSecret())
			u, err := idp.CreateUser(cmd.Context(), addr, name, password, domain.JSONMap{"is_admin": true})
			if err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", u.Email, u.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&password, "password", "", "login password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newAdminGrantCommand() *cobra.Command {
	var revoke bool
	cmd := &cobra.Command{
		Use:   "grant <email>",
		Short: "Set the server-managed admin flag on an existing account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.close()

			users := repos.NewUserRepo(rt.db)
			u, err := users.ByEmail(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("find %s: %w", args[0], err)
			}
			md := u.AppMetadata
			if md == nil {
				md = domain.JSONMap{}
			}
			md["is_admin"] = !revoke
			idp := identity.NewLocal(users, rt.cfg.SigningSecret())
			if _, err := idp.SetAppMetadata(cmd.Context(), u.ID, md); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is_admin=%t\n", u.Email, !revoke)
			return nil
		},
	}
	cmd.Flags().BoolVar(&revoke, "revoke", false, "remove admin rights instead")
	return cmd
}
