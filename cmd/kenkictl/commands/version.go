package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var version = "dev"

// Version returns the version command.
func Version() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the kenkictl version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Printf("kenkictl %s\n", version)
		},
	}
}
