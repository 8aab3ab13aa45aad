package main

import (
	"errors"
	"fmt"

	"github.com/adampresley/photoportfolio/pkg/models"
	"github.com/spf13/cobra"
)

func newGrantAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant-admin EMAIL",
		Short: "Give a user the admin role",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()

			if err != nil {
				return err
			}

			if err = a.userService.GrantRole(args[0], models.RoleAdmin); err != nil {
				return describeUserError(args[0], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin\n", args[0])
			return nil
		},
	}
}

func newRevokeAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke-admin EMAIL",
		Short: "Take the admin role away from a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()

			if err != nil {
				return err
			}

			if err = a.userService.RevokeRole(args[0], models.RoleAdmin); err != nil {
				return describeUserError(args[0], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s is no longer an admin\n", args[0])
			return nil
		},
	}
}

func newRecountPhotosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recount-photos",
		Short: "Recompute the cached photo count of every album",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()

			if err != nil {
				return err
			}

			changed, err := a.libraryService.RecountPhotos()

			if err != nil {
				return fmt.Errorf("recount finished with errors after updating %d album(s): %w", changed, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d album(s) updated\n", changed)
			return nil
		},
	}
}

func describeUserError(email string, err error) error {
	if errors.Is(err, models.ErrUserNotFound) {
		return fmt.Errorf("no user with email '%s'. They must sign up on the site first", email)
	}

	return err
}
