package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/canvass/pkg/canvass"
	"github.com/mesh-intelligence/canvass/pkg/types"
)

func (a *app) newFieldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "field",
		Short: "Manage custom field definitions",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List custom field definitions",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *canvass.Store) error {
				fields, err := s.Customers().Fields().List(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTITLE\tTYPE")
				for _, f := range fields {
					fmt.Fprintf(w, "%d\t%s\t%s\n", f.ID, f.Title, f.Type)
				}
				return w.Flush()
			})
		},
	}

	var typeName string
	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Define a custom field",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := types.ParseFieldType(typeName)
			if err != nil {
				return userErrorf("--type: %w", err)
			}
			return a.withStore(cmd, func(ctx context.Context, s *canvass.Store) error {
				f := &types.CustomField{Title: args[0], Type: ft}
				if err := s.Customers().Fields().Insert(ctx, f); err != nil {
					if types.IsUniqueViolation(err) {
						return userErrorf("custom field %q already exists", f.Title)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added field %d %s (%s)\n", f.ID, f.Title, f.Type)
				return nil
			})
		},
	}
	add.Flags().StringVar(&typeName, "type", types.FieldText.String(), "field type: text, number, date, boolean, choice")

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a custom field definition and its presets",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, s *canvass.Store) error {
				if err := s.Customers().Fields().Remove(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed field %d\n", id)
				return nil
			})
		},
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}

func (a *app) newPresetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage suggested values of custom fields",
	}

	list := &cobra.Command{
		Use:   "list <field-id>",
		Short: "List the presets of a field",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fieldID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, s *canvass.Store) error {
				presets, err := s.Customers().Presets().List(ctx, fieldID)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTITLE")
				for _, p := range presets {
					fmt.Fprintf(w, "%d\t%s\n", p.ID, p.Title)
				}
				return w.Flush()
			})
		},
	}

	add := &cobra.Command{
		Use:   "add <field-id> <title>",
		Short: "Add a preset to a field",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fieldID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, s *canvass.Store) error {
				p, err := s.Customers().Presets().Insert(ctx, fieldID, args[1])
				if err != nil {
					if types.IsConstraint(err) {
						return userErrorf("custom field %d does not exist", fieldID)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added preset %d %s\n", p.ID, p.Title)
				return nil
			})
		},
	}

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a preset",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, s *canvass.Store) error {
				if err := s.Customers().Presets().Remove(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed preset %d\n", id)
				return nil
			})
		},
	}

	cmd.AddCommand(list, add, remove)
	return cmd
}
