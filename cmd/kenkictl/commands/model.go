package commands

import (
	"github.com/spf13/cobra"

	"github.com/kenki-os/kenkictl/cmd/kenkictl/handlers"
)

// Model returns the command running only the artifact setup: select a
// model, check the disk budget, download, and point the assistant
// config at the result.
func Model() *cobra.Command {
	var opts handlers.ModelOptions

	cmd := &cobra.Command{
		Use:   "model",
		Short: "Download a local model and wire it into the assistant config",
		Long: `Select a model from the catalog and download it.

An interrupted download leaves a .partial file behind and resumes from
it on the next attempt.

Examples:
  # Interactive selection menu
  kenkictl model

  # Non-interactive
  kenkictl model --model tinyllama-1.1b-q4 --retries 5`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Model(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.PlanPath, "plan", "p", "kenki.yaml", "Path to the provisioning plan")
	cmd.Flags().StringVarP(&opts.ModelID, "model", "m", "", "Catalog ID of the model to fetch")
	cmd.Flags().IntVar(&opts.Retries, "retries", 3, "Retry attempts for transient download failures")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}
