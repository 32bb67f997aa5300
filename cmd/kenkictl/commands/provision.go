package commands

import (
	"github.com/spf13/cobra"

	"github.com/kenki-os/kenkictl/cmd/kenkictl/handlers"
)

// Provision returns the command running the full provisioning sequence.
//
// Exit codes: 0 when every step succeeded, 1 when the run finished but
// optional steps were skipped, 2 when a required step aborted the run.
func Provision() *cobra.Command {
	var opts handlers.ProvisionOptions

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Run the full provisioning sequence",
		Long: `Run the full provisioning sequence: preflight checks, package sets,
assistant configuration, optional model download, service registration,
and shell environment composition.

Examples:
  # Full run with the default plan
  kenkictl provision

  # Non-interactive run, fetch a specific model
  kenkictl provision --yes --model phi-3-mini-q4

  # Show the planned steps without touching the system
  kenkictl provision --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Provision(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.PlanPath, "plan", "p", "kenki.yaml", "Path to the provisioning plan")
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Override the assistant config path")
	cmd.Flags().StringVarP(&opts.ModelID, "model", "m", "", "Catalog ID of the model to fetch (skips the menu)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Report planned steps without mutating state")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "Never prompt; skip the model unless --model is given")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}
