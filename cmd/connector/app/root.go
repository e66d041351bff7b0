// cmd/connector/app/root.go
package app

import (
	"github.com/spf13/cobra"
)

const ComponentConnector = "connector"

// NewConnectorCmd builds the root command with its subcommands.
func NewConnectorCmd() *cobra.Command {
	o := NewDefaultOptions()

	cmd := &cobra.Command{
		Use:           ComponentConnector,
		Short:         "Poll a home battery over Modbus TCP and forward readings to time-series sinks",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	o.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newRunCmd(o),
		newInfoCmd(o),
		newServeCmd(o),
	)
	return cmd
}
