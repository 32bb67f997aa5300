package commands

import (
	"github.com/spf13/cobra"

	"github.com/kenki-os/kenkictl/cmd/kenkictl/handlers"
)

// Service returns the command running only service registration.
func Service() *cobra.Command {
	var opts handlers.ServiceOptions

	cmd := &cobra.Command{
		Use:   "service",
		Short: "Register and start the local LLM service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Service(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.PlanPath, "plan", "p", "kenki.yaml", "Path to the provisioning plan")
	cmd.Flags().StringVar(&opts.Target, "target", "", "Unit scope: user or system (default: from plan)")

	return cmd
}
