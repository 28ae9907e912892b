package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/canvass/internal/paths"
	"github.com/mesh-intelligence/canvass/pkg/canvass"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the configuration and an up-to-date database",
		Long: "Write config.yaml if missing, then open the database once so every table\n" +
			"and migration is in place.",
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *canvass.Store) error {
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, "canvass initialized")
				fmt.Fprintf(out, "config: %s\n", paths.ConfigFile(a.configDir))
				fmt.Fprintf(out, "data:   %s\n", s.Path())
				return nil
			})
		},
	}
}
