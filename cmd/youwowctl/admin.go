package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func adminCmd(with runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin panel accounts",
	}

	create := &cobra.Command{
		Use:   "create [login] [password]",
		Short: "Create an admin account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return with(cmd, func(ctx context.Context, svc *services) error {
				user, err := svc.Auth.CreateAdmin(ctx, args[0], args[1])
				if err != nil {
					return fmt.Errorf("create admin: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "admin %q created with id %d\n", user.Login, user.ID)
				return nil
			})
		},
	}

	cmd.AddCommand(create)
	return cmd
}
