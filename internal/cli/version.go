package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gitrdm/gokanprop/pkg/engine"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := engine.GetVersionInfo()
			if rootOpts.Format == "json" {
				return writeJSON(cmd.OutOrStdout(), "ok", info)
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "gokanprop %s (%s)\n", info.Version, info.GoVersion)
			return err
		},
	}
}
