package handlers

import (
	"context"
	"fmt"

	"github.com/kenki-os/kenkictl/internal/artifact"
	"github.com/kenki-os/kenkictl/internal/provisioning"
	"github.com/kenki-os/kenkictl/internal/ui"
)

// ProvisionOptions are the flag values for the provision command.
type ProvisionOptions struct {
	PlanPath   string
	ConfigPath string
	ModelID    string
	DryRun     bool
	Yes        bool
	Verbose    bool
}

// selectModel is a seam so tests can script the interactive menu.
var selectModel = ui.SelectModel

// Provision runs the full provisioning sequence and returns an
// ExitError carrying the summary's exit code when it is non-zero.
func Provision(ctx context.Context, opts ProvisionOptions) error {
	plan, err := loadPlan(opts.PlanPath)
	if err != nil {
		return err
	}
	if opts.ConfigPath != "" {
		plan.ConfigPath = opts.ConfigPath
	}

	logger, err := newLogger(opts.Verbose)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	observer := provisioning.NewZapObserver(logger)
	pctx := provisioning.NewContext(ctx, plan, observer)
	pctx.DryRun = opts.DryRun

	deps := defaultDeps()
	deps.Progress = observerProgress(pctx.Observer)

	if !plan.SkipModel {
		choice, err := resolveModelChoice(deps.Catalog, opts)
		if err != nil {
			return err
		}
		pctx.ModelChoice = choice
	}

	summary := provisioning.Run(pctx, provisioning.Steps(deps, plan.SkipModel))
	fmt.Print(ui.RenderSummary(summary))

	if code := summary.ExitCode(); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// resolveModelChoice turns the --model flag or the interactive menu
// into a validated catalog index. -1 means fetch nothing.
func resolveModelChoice(catalog []artifact.ModelArtifact, opts ProvisionOptions) (int, error) {
	if opts.ModelID != "" {
		art, err := artifact.ByID(catalog, opts.ModelID)
		if err != nil {
			return -1, err
		}
		for i, entry := range catalog {
			if entry.ID == art.ID {
				return i, nil
			}
		}
	}

	if opts.Yes || opts.DryRun || !ui.IsInteractive() {
		return -1, nil
	}

	return selectModel(catalog)
}
