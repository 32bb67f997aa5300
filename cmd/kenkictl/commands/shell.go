package commands

import (
	"github.com/spf13/cobra"

	"github.com/kenki-os/kenkictl/cmd/kenkictl/handlers"
)

// Shell returns the command running only the shell composition step.
func Shell() *cobra.Command {
	var rcPath string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Compose the kenki shell environment",
		Long: `Write or update the kenki managed block in the zsh configuration.

Content outside the managed block is never touched; the previous file is
backed up before any rewrite.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Shell(cmd.Context(), rcPath)
		},
	}

	cmd.Flags().StringVar(&rcPath, "rc", "", "Path to the rc file (default: ~/.zshrc)")

	return cmd
}
