package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func mountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mount",
		Short: "Mount the drive until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logout, err := signIn(ctx)
			if err != nil {
				return err
			}
			defer logout()

			c := wire.Client
			if err := c.MountDrive(ctx); err != nil {
				return err
			}
			fmt.Printf("Mounted at %s\nOwner files in %s\nPress Ctrl-C to unmount.\n", c.MountPath(), c.OwnerPath())
			<-ctx.Done()

			bg := context.WithoutCancel(ctx)
			if err := c.UnMountDrive(bg); err != nil {
				return err
			}
			if err := c.SaveSession(bg); err != nil {
				return err
			}
			fmt.Println("Unmounted")
			return nil
		},
	}
}
