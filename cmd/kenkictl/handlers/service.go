package handlers

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kenki-os/kenkictl/internal/systemd"
)

// ServiceOptions are the flag values for the service command.
type ServiceOptions struct {
	PlanPath string
	Target   string
}

// Service registers and starts the local LLM unit on its own.
func Service(ctx context.Context, opts ServiceOptions) error {
	plan, err := loadPlan(opts.PlanPath)
	if err != nil {
		return err
	}

	target := plan.ServiceTarget
	if opts.Target != "" {
		target = opts.Target
	}
	if target != "user" && target != "system" {
		return fmt.Errorf("invalid target %q: must be \"user\" or \"system\"", target)
	}

	deps := defaultDeps()
	unit := systemd.LLMServiceUnit(systemd.Target(target), filepath.Join(plan.ModelDir, "placeholder"))

	status, err := deps.Registrar.Register(ctx, unit)
	if err != nil {
		var actErr *systemd.ActivationError
		if errors.As(err, &actErr) && status != nil {
			// The unit file landed; tell the operator exactly what is stale.
			return fmt.Errorf("%w (unit file at %s)", err, status.UnitPath)
		}
		return err
	}

	fmt.Printf("service %s registered at %s (active=%t)\n", unit.Name, status.UnitPath, status.Active)
	return nil
}
