package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"lifestuff/internal/input"
)

func createCmd() *cobra.Command {
	var confirm string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account for --keyword, --pin and --password",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := wire.Client
			if err := enterCredentials(c); err != nil {
				return err
			}
			if confirm != "" {
				if err := c.InsertUserInput(input.ConfirmationPassword, 0, confirm); err != nil {
					return err
				}
				if err := c.ConfirmUserInput(input.ConfirmationPassword); err != nil {
					return fmt.Errorf("password confirmation: %w", err)
				}
			}
			if err := c.CreateUser(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("Account created.\nUnique user id: %s\n", c.Session().UniqueUserID())
			return c.LogOut(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&confirm, "confirm-password", "", "repeat the password to guard against typos")
	return cmd
}
