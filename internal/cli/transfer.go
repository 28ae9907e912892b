package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/canvass/internal/jsonl"
	"github.com/mesh-intelligence/canvass/pkg/canvass"
	"github.com/mesh-intelligence/canvass/pkg/types"
)

func (a *app) newExportCmd() *cobra.Command {
	var since, out string
	var all bool
	cmd := &cobra.Command{
		Use:   "export <table>",
		Short: "Write the entities of a table as JSON Lines",
		Long: "Export writes one JSON object per line, without attachments. With --out\n" +
			"the file is replaced atomically; otherwise records go to stdout. --since\n" +
			"selects the rows changed at or after a time, tombstones included with --all.",
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			modified, err := parseSince(since)
			if err != nil {
				return err
			}
			batch, err := uuid.NewV7()
			if err != nil {
				return fmt.Errorf("batch id: %w", err)
			}
			return a.withStore(cmd, func(ctx context.Context, s *canvass.Store) error {
				t, err := table(s, args[0])
				if err != nil {
					return err
				}
				entities, err := t.List(ctx, types.ListOptions{IncludeRemoved: all, ModifiedSince: modified})
				if err != nil {
					return err
				}
				records, err := jsonl.Encode(entities)
				if err != nil {
					return err
				}
				if out == "" {
					err = jsonl.WriteTo(cmd.OutOrStdout(), records)
				} else {
					err = jsonl.Write(out, records)
				}
				if err != nil {
					return fmt.Errorf("writing export: %w", err)
				}
				a.log.Info(ctx, "export written", "table", t.Name(), "records", len(records), "batch", batch.String())
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d %s records (batch %s)\n", len(records), t.Name(), batch)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&since, "since", "", "only entities modified at or after this time")
	cmd.Flags().BoolVar(&all, "all", false, "include removed entities")
	cmd.Flags().StringVar(&out, "out", "", "file to write instead of stdout")
	return cmd
}

func (a *app) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <table> <file>",
		Short: "Save every entity of a JSON Lines file in one transaction",
		Long: "Import reads a file written by export and saves each record: known ids\n" +
			"are updated and new ones inserted. Attachments missing from the records\n" +
			"keep their stored content, and removed records stay or become tombstones.\n" +
			"Any failure leaves the table unchanged.",
		Args: exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := jsonl.Read(args[1])
			if err != nil {
				return userError{err}
			}
			return a.withStore(cmd, func(ctx context.Context, s *canvass.Store) error {
				t, err := table(s, args[0])
				if err != nil {
					return err
				}
				err = s.WithTransaction(ctx, func(ctx context.Context) error {
					for i, rec := range records {
						e := t.New()
						if err := json.Unmarshal(rec, e); err != nil {
							return userErrorf("record %d: %w", i+1, err)
						}
						if _, err := t.Save(ctx, e); err != nil {
							return fmt.Errorf("record %d: %w", i+1, err)
						}
					}
					return nil
				})
				if err != nil {
					return err
				}
				if touchesDirectory(t.Name()) {
					s.Directory().Schedule()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d %s records\n", len(records), t.Name())
				return nil
			})
		},
	}
}
