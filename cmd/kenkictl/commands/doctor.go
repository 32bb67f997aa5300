package commands

import (
	"github.com/spf13/cobra"

	"github.com/kenki-os/kenkictl/cmd/kenkictl/handlers"
)

// Doctor returns the diagnostic command: tool availability, config
// state, and which assistant backends are usable.
func Doctor() *cobra.Command {
	var opts handlers.DoctorOptions

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose the provisioning environment and assistant setup",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.PlanPath, "plan", "p", "kenki.yaml", "Path to the provisioning plan")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Emit machine-readable JSON")

	return cmd
}
