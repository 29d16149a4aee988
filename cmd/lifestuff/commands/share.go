package commands

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"lifestuff/internal/domain"
	sharesvc "lifestuff/internal/services/share"
)

func shareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Share a directory and receive shares from contacts",
	}
	cmd.PersistentFlags().String("as", "", "your public id to act as")
	_ = cmd.MarkPersistentFlagRequired("as")
	cmd.AddCommand(shareCreateCmd(), shareAddCmd(), shareRemoveCmd(), shareSyncCmd())
	return cmd
}

// shareAs signs in, loads the share service for the --as public id, which
// must belong to the session, and runs fn. The share state is saved after fn
// returns.
func shareAs(cmd *cobra.Command, fn func(*sharesvc.Service) error) error {
	as, _ := cmd.Flags().GetString("as")
	logout, err := signIn(cmd.Context())
	if err != nil {
		return err
	}
	defer logout()

	me := domain.PublicID(as)
	if !slices.Contains(wire.Client.Session().PublicIDs(), me) {
		return fmt.Errorf("public id %q is not yours: %w", as, domain.ErrInvalidParameter)
	}
	svc, err := wire.Shares(me)
	if err != nil {
		return err
	}
	// A failed rotation may already have swapped keys, so save either way.
	err = fn(svc)
	if serr := wire.SaveShares(me, svc); serr != nil {
		return errors.Join(err, fmt.Errorf("save shares: %w", serr))
	}
	return err
}

func printRecord(rec sharesvc.Record) {
	fmt.Printf("Directory:  %s\n", rec.DirectoryID)
	fmt.Printf("Share:      %s\n", rec.ShareID)
	for id, r := range rec.Members {
		fmt.Printf("  %-24s %s\n", id, r)
	}
}

// parseMembers reads "id" or "id:rights" entries.
func parseMembers(entries []string) (map[domain.PublicID]sharesvc.Rights, error) {
	out := make(map[domain.PublicID]sharesvc.Rights, len(entries))
	for _, e := range entries {
		id, rights, _ := strings.Cut(e, ":")
		r, err := sharesvc.ParseRights(rights)
		if err != nil {
			return nil, err
		}
		out[domain.PublicID(id)] = r
	}
	return out, nil
}

func shareCreateCmd() *cobra.Command {
	var (
		dir     string
		members []string
	)
	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create a share and send its keys to the members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parseMembers(members)
			if err != nil {
				return err
			}
			return shareAs(cmd, func(svc *sharesvc.Service) error {
				rec, err := svc.CreateShare(cmd.Context(), dir, args[0], m)
				if err != nil {
					return err
				}
				printRecord(rec)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory id (default: a new id)")
	cmd.Flags().StringSliceVar(&members, "member", nil, "member as id or id:admin (repeatable)")
	return cmd
}

func shareAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [directory] [member[:admin]]",
		Short: "Add a member or change their rights; the share is re-keyed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := parseMembers(args[1:])
			if err != nil {
				return err
			}
			return shareAs(cmd, func(svc *sharesvc.Service) error {
				for id, r := range m {
					rec, ok := svc.Registry().Get(args[0])
					if !ok {
						return fmt.Errorf("share %s: %w", args[0], domain.ErrNotFound)
					}
					if _, member := rec.Members[id]; member {
						rec, err = svc.SetRights(cmd.Context(), args[0], id, r)
					} else {
						rec, err = svc.AddMember(cmd.Context(), args[0], id, r)
					}
					if err != nil {
						return err
					}
					printRecord(rec)
				}
				return nil
			})
		},
	}
}

func shareRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [directory] [member]",
		Short: "Remove a member; the share is re-keyed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return shareAs(cmd, func(svc *sharesvc.Service) error {
				rec, err := svc.RemoveMember(cmd.Context(), args[0], domain.PublicID(args[1]))
				if err != nil {
					return err
				}
				printRecord(rec)
				return nil
			})
		},
	}
}

func shareSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Apply queued share messages and list the shares you belong to",
		RunE: func(cmd *cobra.Command, args []string) error {
			return shareAs(cmd, func(svc *sharesvc.Service) error {
				n, err := svc.Sync(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Printf("Applied %d messages\n", n)
				for _, m := range svc.KeyRing().List() {
					access := "read_only"
					if m.Keys.Admin() {
						access = "admin"
					}
					fmt.Printf("%-36s %-16s from %-16s %s\n", m.DirectoryID, m.Name, m.From, access)
				}
				return nil
			})
		},
	}
}
