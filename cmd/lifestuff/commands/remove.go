package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"lifestuff/internal/input"
)

func removeCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Delete the account from the network",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to remove the account without --yes")
			}
			logout, err := signIn(cmd.Context())
			if err != nil {
				return err
			}
			c := wire.Client
			if err := enter(c, input.CurrentPassword, password); err != nil {
				logout()
				return err
			}
			if err := c.RemoveUser(cmd.Context()); err != nil {
				logout()
				return err
			}
			fmt.Println("Account removed")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm removal")
	return cmd
}
