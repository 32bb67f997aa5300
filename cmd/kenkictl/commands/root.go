// Package commands defines the CLI command structure and flag bindings.
//
// Commands handle argument parsing and flag binding only; execution is
// delegated to handler functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the kenkictl CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kenkictl",
		Short:         "Provision a KENKI OS image with the AI assistant stack",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(Provision())
	cmd.AddCommand(Model())
	cmd.AddCommand(Shell())
	cmd.AddCommand(Service())
	cmd.AddCommand(Doctor())
	cmd.AddCommand(Version())

	return cmd
}
