package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"lifestuff/internal/input"
)

func changeCmd(use, short, flag string, field input.Field, apply func(context.Context) error) *cobra.Command {
	var value string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			logout, err := signIn(cmd.Context())
			if err != nil {
				return err
			}
			defer logout()

			c := wire.Client
			if err := enter(c, input.CurrentPassword, password); err != nil {
				return err
			}
			if err := enter(c, field, value); err != nil {
				return err
			}
			if err := apply(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("Changed %v.\n", field)
			return nil
		},
	}
	cmd.Flags().StringVar(&value, flag, "", "the new value")
	_ = cmd.MarkFlagRequired(flag)
	return cmd
}

func changeKeywordCmd() *cobra.Command {
	return changeCmd("change-keyword", "Move the account to a new keyword", "new-keyword",
		input.Keyword, func(ctx context.Context) error { return wire.Client.ChangeKeyword(ctx) })
}

func changePinCmd() *cobra.Command {
	return changeCmd("change-pin", "Move the account to a new pin", "new-pin",
		input.Pin, func(ctx context.Context) error { return wire.Client.ChangePin(ctx) })
}

func changePasswordCmd() *cobra.Command {
	return changeCmd("change-password", "Re-encrypt the account under a new password", "new-password",
		input.Password, func(ctx context.Context) error { return wire.Client.ChangePassword(ctx) })
}
