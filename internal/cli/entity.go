package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/canvass/pkg/canvass"
	"github.com/mesh-intelligence/canvass/pkg/types"
)

func (a *app) newListCmd() *cobra.Command {
	var search, since string
	var all bool
	cmd := &cobra.Command{
		Use:   "list <table>",
		Short: "List the entities of a table as JSON",
		Long: "List prints the entities of a table in its stable order. Attachments are\n" +
			"not loaded; use get for those.\n\n" +
			"Example:\n" +
			"  canvass list customer --search 555-22\n" +
			"  canvass list note --since 2025-01-01 --all",
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modified, err := parseSince(since)
			if err != nil {
				return err
			}
			opts := types.ListOptions{Search: search, IncludeRemoved: all, ModifiedSince: modified}
			return a.withStore(cmd, func(ctx context.Context, s *canvass.Store) error {
				t, err := table(s, args[0])
				if err != nil {
					return err
				}
				entities, err := t.List(ctx, opts)
				if err != nil {
					return err
				}
				if entities == nil {
					entities = []any{}
				}
				return printJSON(cmd.OutOrStdout(), entities)
			})
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive substring to match")
	cmd.Flags().BoolVar(&all, "all", false, "include removed entities")
	cmd.Flags().StringVar(&since, "since", "", "only entities modified at or after this time")
	return cmd
}

func (a *app) newGetCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "get <table> <id>",
		Short: "Print one entity as JSON",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, s *canvass.Store) error {
				t, err := table(s, args[0])
				if err != nil {
					return err
				}
				e, err := t.Get(ctx, id, all)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), e)
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "return the entity even when removed")
	return cmd
}

func (a *app) newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <table> <json>",
		Short: "Create or update an entity from JSON",
		Long: "Set creates the entity when its id is absent or unknown and updates it\n" +
			"otherwise. The stored entity is printed.\n\n" +
			"Example:\n" +
			"  canvass set customer '{\"first_name\":\"Ann\",\"phone_home\":\"555-1111\"}'",
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *canvass.Store) error {
				t, err := table(s, args[0])
				if err != nil {
					return err
				}
				e := t.New()
				if err := json.Unmarshal([]byte(args[1]), e); err != nil {
					return userErrorf("parse JSON: %w", err)
				}
				id, err := t.Save(ctx, e)
				if err != nil {
					return err
				}
				if touchesDirectory(t.Name()) {
					s.Directory().Schedule()
				}
				saved, err := t.Get(ctx, id, true)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), saved)
			})
		},
	}
}

func (a *app) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <table> <id>",
		Short: "Tombstone an entity",
		Args:  exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, s *canvass.Store) error {
				t, err := table(s, args[0])
				if err != nil {
					return err
				}
				if err := t.Remove(ctx, id); err != nil {
					return err
				}
				if touchesDirectory(t.Name()) {
					s.Directory().Schedule()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s %d\n", t.Name(), id)
				return nil
			})
		},
	}
}

func (a *app) newPurgeCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "purge <table>",
		Short: "Delete every row of a table, tombstones and attachments included",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return userErrorf("purge deletes every %s row permanently; pass --yes to confirm", args[0])
			}
			return a.withStore(cmd, func(ctx context.Context, s *canvass.Store) error {
				t, err := table(s, args[0])
				if err != nil {
					return err
				}
				if err := t.DeleteAll(ctx); err != nil {
					return err
				}
				if touchesDirectory(t.Name()) {
					s.Directory().Schedule()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Purged %s\n", t.Name())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the purge")
	return cmd
}
