package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/kenki-os/kenkictl/internal/artifact"
	"github.com/kenki-os/kenkictl/internal/config"
	"github.com/kenki-os/kenkictl/internal/ui"
	"github.com/kenki-os/kenkictl/internal/util/retry"
)

// ModelOptions are the flag values for the model command.
type ModelOptions struct {
	PlanPath string
	ModelID  string
	Retries  int
	Verbose  bool
}

// Model runs the standalone artifact setup: select, budget-check,
// download with resume, and point the assistant config at the result.
func Model(ctx context.Context, opts ModelOptions) error {
	plan, err := loadPlan(opts.PlanPath)
	if err != nil {
		return err
	}

	deps := defaultDeps()

	var art artifact.ModelArtifact
	if opts.ModelID != "" {
		art, err = artifact.ByID(deps.Catalog, opts.ModelID)
		if err != nil {
			return err
		}
	} else {
		if !ui.IsInteractive() {
			return fmt.Errorf("no terminal for the selection menu: pass --model <id>")
		}
		choice, err := selectModel(deps.Catalog)
		if err != nil {
			return err
		}
		if choice < 0 {
			fmt.Println("no model selected")
			return nil
		}
		art, err = artifact.Select(deps.Catalog, choice)
		if err != nil {
			return err
		}
	}

	var path string
	fetchOnce := func() error {
		return markFatal(ui.RunDownload(ctx, art.Name, func(fetchCtx context.Context, progress artifact.ProgressFunc) error {
			var fetchErr error
			path, fetchErr = deps.Fetcher.Fetch(fetchCtx, art, plan.ModelDir, progress)
			return fetchErr
		}))
	}

	// Only transient transfer failures are retried; selection errors,
	// disk-budget errors, and operator interrupts fail immediately.
	if err := retry.Do(ctx, fetchOnce, retry.WithMaxRetries(opts.Retries)); err != nil {
		return err
	}

	if _, err := config.Merge(plan.ConfigPath, map[string]any{
		"local_llm": map[string]any{
			"enabled":    true,
			"model_path": path,
		},
	}); err != nil {
		return err
	}

	fmt.Printf("model ready at %s\n", path)
	return nil
}

// markFatal wraps non-retryable fetch failures so retry.Do stops.
func markFatal(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ui.ErrInterrupted) {
		return retry.Fatal(err)
	}
	var space *artifact.InsufficientSpaceError
	var selection *artifact.InvalidSelectionError
	if errors.As(err, &space) || errors.As(err, &selection) {
		return retry.Fatal(err)
	}
	return err
}
