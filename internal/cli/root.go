// Package cli implements the canvass command-line interface: an operator
// surface for inspecting, editing, and exporting a canvass store.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/canvass/internal/logging"
	"github.com/mesh-intelligence/canvass/pkg/canvass"
	"github.com/mesh-intelligence/canvass/pkg/types"
)

// rootFlags holds global flag values.
type rootFlags struct {
	configDir string
	dataDir   string
}

// app is the state of one CLI invocation, filled in by setup.
type app struct {
	flags     rootFlags
	configDir string
	cfg       types.Config
	log       logging.Logger
}

// NewRootCmd creates the "canvass" command with global flags and every
// subcommand registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: logging.Nop()}
	root := &cobra.Command{
		Use:   "canvass",
		Short: "Inspect and maintain a canvass CRM database",
		Long: "canvass opens the local database of the canvass field sales CRM to list,\n" +
			"edit, and export customers and their sibling records.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return userError{err}
	})

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: ./.canvass-db)")

	root.AddCommand(
		newVersionCmd(),
		a.newInitCmd(),
		a.newStatusCmd(),
		a.newListCmd(),
		a.newGetCmd(),
		a.newSetCmd(),
		a.newRemoveCmd(),
		a.newPurgeCmd(),
		a.newFieldCmd(),
		a.newPresetCmd(),
		a.newDirectoryCmd(),
		a.newExportCmd(),
		a.newImportCmd(),
	)
	return root
}

// Execute runs the root command and exits with its exit code.
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// Run executes the CLI with args and returns the process exit code.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "canvass:", err)
	}
	return exitCode(err)
}

// withStore opens the configured store, runs fn, and closes the store. The
// close error is reported when fn succeeded.
func (a *app) withStore(cmd *cobra.Command, fn func(ctx context.Context, s *canvass.Store) error) error {
	ctx := cmd.Context()
	s, err := canvass.Open(ctx, a.cfg, canvass.WithLogger(a.log))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	err = fn(ctx, s)
	if cerr := s.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("closing store: %w", cerr))
	}
	return err
}
