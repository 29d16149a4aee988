package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"lifestuff/internal/input"
)

func existsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exists",
		Short: "Report whether an account exists for --keyword and --pin",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := wire.Client
			if err := enter(c, input.Keyword, keyword); err != nil {
				return err
			}
			if err := enter(c, input.Pin, pin); err != nil {
				return err
			}
			exists, err := c.UserExists(cmd.Context())
			if err != nil {
				return err
			}
			if exists {
				fmt.Println("Account exists")
			} else {
				fmt.Println("No such account")
			}
			return nil
		},
	}
}
