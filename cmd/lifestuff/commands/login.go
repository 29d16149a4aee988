package commands

import (
	"fmt"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"

	"lifestuff/internal/crypto"
	"lifestuff/internal/passport"
)

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in, print the account summary and log out",
		RunE: func(cmd *cobra.Command, args []string) error {
			logout, err := signIn(cmd.Context())
			if err != nil {
				return err
			}
			defer logout()

			sess := wire.Client.Session()
			maid, err := sess.Passport().Key(passport.Maid, true)
			if err != nil {
				return err
			}
			maxSpace, usedSpace := sess.Quota()
			fmt.Printf("Unique user id: %s\n", sess.UniqueUserID())
			fmt.Printf("Fingerprint:    %s\n", crypto.Fingerprint(maid.SigningPublic.Slice()))
			fmt.Printf("Storage:        %s of %s used\n", units.BytesSize(float64(usedSpace)), units.BytesSize(float64(maxSpace)))
			fmt.Printf("Public ids:     %d\n", len(sess.PublicIDs()))
			fmt.Printf("Contacts:       %d\n", sess.Contacts().Len())
			fmt.Printf("Last saved:     %s\n", units.HumanDuration(time.Since(sess.Timestamp()))+" ago")
			return nil
		},
	}
}
