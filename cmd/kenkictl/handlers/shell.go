package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kenki-os/kenkictl/internal/provisioning"
	"github.com/kenki-os/kenkictl/internal/shellenv"
)

// Shell runs only the shell composition step.
func Shell(_ context.Context, rcPath string) error {
	if rcPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to resolve home directory: %w", err)
		}
		rcPath = filepath.Join(home, ".zshrc")
	}

	changed, err := shellenv.Compose(rcPath, provisioning.AssistantPath)
	if err != nil {
		return err
	}

	if changed {
		fmt.Printf("updated %s\n", rcPath)
	} else {
		fmt.Printf("%s already up to date\n", rcPath)
	}
	return nil
}
