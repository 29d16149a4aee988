package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lifestuff/internal/contacts"
	"lifestuff/internal/domain"
)

func contactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Add, list and search contacts",
	}
	cmd.AddCommand(contactAddCmd(), contactListCmd(), contactSearchCmd())
	return cmd
}

func contactAddCmd() *cobra.Command {
	var own string
	cmd := &cobra.Command{
		Use:   "add [public-id]",
		Short: "Add a contact and save the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logout, err := signIn(cmd.Context())
			if err != nil {
				return err
			}
			defer logout()

			sess := wire.Client.Session()
			if own != "" {
				sess.AddPublicID(domain.PublicID(own))
			}
			err = sess.Contacts().Add(contacts.Contact{
				PublicID:    domain.PublicID(args[0]),
				OwnPublicID: domain.PublicID(own),
				Status:      contacts.RequestSent,
				LastContact: uint64(time.Now().UnixMicro()),
			})
			if err != nil {
				return err
			}
			if err := wire.Client.SaveSession(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("Added %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&own, "as", "", "your public id this contact belongs to")
	return cmd
}

func printContacts(cs []contacts.Contact) {
	for _, ct := range cs {
		fmt.Printf("%-24s %-16s %-8s rank %d\n", ct.PublicID, ct.Status, ct.Presence, ct.Rank)
	}
}

func contactListCmd() *cobra.Command {
	var order string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := contacts.ParseOrder(order)
			if err != nil {
				return err
			}
			logout, err := signIn(cmd.Context())
			if err != nil {
				return err
			}
			defer logout()
			printContacts(wire.Client.Session().Contacts().Ordered(o))
			return nil
		},
	}
	cmd.Flags().StringVar(&order, "order", "alphabetical", "insertion, alphabetical, popular or last_contacted")
	return cmd
}

func contactSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Fuzzy search contacts by public id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logout, err := signIn(cmd.Context())
			if err != nil {
				return err
			}
			defer logout()
			printContacts(wire.Client.Session().Contacts().Search(args[0]))
			return nil
		},
	}
}
