package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kenki-os/kenkictl/cmd/kenkictl/commands"
	"github.com/kenki-os/kenkictl/cmd/kenkictl/handlers"
)

func main() {
	// Interrupts are honored at step boundaries; the context is the
	// only cancellation channel the pipeline checks.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Root().ExecuteContext(ctx); err != nil {
		var exitErr *handlers.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}
