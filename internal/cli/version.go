package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/canvass/pkg/canvass"
)

const modulePath = "github.com/mesh-intelligence/canvass"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the canvass version",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "canvass v%s\nmodule: %s\n", canvass.Version, modulePath)
			return nil
		},
	}
}
