package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/canvass/pkg/canvass"
	"github.com/mesh-intelligence/canvass/pkg/types"
)

func (a *app) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show row counts per table",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *canvass.Store) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "database\t%s\n", s.Path())
				fmt.Fprintln(w, "TABLE\tACTIVE\tREMOVED")
				for _, name := range types.EntityTableNames {
					t, err := s.Table(name)
					if err != nil {
						return err
					}
					active, err := t.Count(ctx, false)
					if err != nil {
						return err
					}
					all, err := t.Count(ctx, true)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "%s\t%d\t%d\n", name, active, all-active)
				}

				fields, err := s.Customers().Fields().List(ctx)
				if err != nil {
					return err
				}
				entries, err := s.Directory().Entries(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%d\t-\n", types.CustomFieldsTable, len(fields))
				fmt.Fprintf(w, "%s\t%d\t-\n", types.PhoneDirectoryTable, len(entries))
				return w.Flush()
			})
		},
	}
}
