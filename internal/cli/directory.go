package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/canvass/pkg/canvass"
	"github.com/mesh-intelligence/canvass/pkg/types"
)

func (a *app) newDirectoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "directory",
		Short: "Maintain the phone directory derived from customers",
	}

	rebuild := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the phone directory now",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *canvass.Store) error {
				n, err := s.Directory().Rebuild(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rebuilt phone directory: %d entries\n", n)
				return nil
			})
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Print the phone directory",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *canvass.Store) error {
				entries, err := s.Directory().Entries(ctx)
				if err != nil {
					return err
				}
				return printEntries(cmd, entries)
			})
		},
	}

	lookup := &cobra.Command{
		Use:   "lookup <phone>",
		Short: "Find the customers owning a phone number",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *canvass.Store) error {
				entries, err := s.Directory().Lookup(ctx, args[0])
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					return userErrorf("phone %s: %w", args[0], types.ErrNotFound)
				}
				return printEntries(cmd, entries)
			})
		},
	}

	cmd.AddCommand(rebuild, list, lookup)
	return cmd
}

func printEntries(cmd *cobra.Command, entries []types.PhoneEntry) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PHONE\tNAME\tOWNER")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\n", e.Phone, e.DisplayName, e.OwnerID)
	}
	return w.Flush()
}
