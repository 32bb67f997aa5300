package provisioning

import (
	"errors"
	"fmt"
	"time"

	"github.com/kenki-os/kenkictl/internal/systemd"
)

// Action identifies what kind of work a step performs.
type Action string

const (
	ActionCheckPreconditions Action = "check-preconditions"
	ActionInstallPackages    Action = "install-packages"
	ActionWriteConfig        Action = "write-config"
	ActionFetchArtifact      Action = "fetch-artifact"
	ActionRegisterService    Action = "register-service"
	ActionComposeShell       Action = "compose-shell"
)

// RunState is the orchestrator's position in the fixed sequence.
type RunState string

const (
	StateInit          RunState = "Init"
	StatePreconditions RunState = "Preconditions"
	StateInstalling    RunState = "Installing"
	StateConfiguring   RunState = "Configuring"
	StateServiceSetup  RunState = "ServiceSetup"
	StateShellCompose  RunState = "ShellCompose"
	StateDone          RunState = "Done"
	StateAborted       RunState = "Aborted"
)

// Step is one discrete unit of provisioning work. Steps run in catalog
// order and are never reordered at runtime.
type Step struct {
	Name       string
	Action     Action
	State      RunState
	Required   bool
	Idempotent bool
	Run        func(*Context) error
}

// SkippedStep records a non-required step that failed.
type SkippedStep struct {
	Step   string
	Reason string
}

// Summary is the final report of a provisioning run.
type Summary struct {
	RunID     string
	State     RunState
	Succeeded []string
	Skipped   []SkippedStep
	Err       error
}

// ExitCode maps the summary to the process exit status: 0 clean, 1 done
// with skips, 2 aborted.
func (s *Summary) ExitCode() int {
	switch {
	case s.State == StateAborted:
		return 2
	case len(s.Skipped) > 0:
		return 1
	default:
		return 0
	}
}

// Run executes steps in order. A required step's failure aborts the run;
// a non-required step's failure is recorded and the sequence continues.
// Cancellation is checked only between steps so a package transaction or
// file write is never interrupted midway.
func Run(ctx *Context, steps []Step) *Summary {
	summary := &Summary{RunID: ctx.RunID, State: StateInit}
	start := time.Now()
	ctx.Observer.Printf("starting provisioning run %s (%d steps)", ctx.RunID, len(steps))

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			summary.State = StateAborted
			summary.Err = fmt.Errorf("run canceled before step %s: %w", step.Name, err)
			return summary
		}

		summary.State = step.State
		ctx.Observer.Event(Event{Type: EventStepStarted, Step: step.Name,
			Message: fmt.Sprintf("(%d/%d)", i+1, len(steps))})

		if ctx.DryRun {
			ctx.Observer.Printf("[dry-run] would run %s (%s, required=%t)", step.Name, step.Action, step.Required)
			summary.Succeeded = append(summary.Succeeded, step.Name)
			continue
		}

		stepStart := time.Now()
		err := step.Run(ctx)
		if err == nil {
			ctx.Observer.Event(Event{Type: EventStepCompleted, Step: step.Name,
				Message: fmt.Sprintf("in %v", time.Since(stepStart).Round(time.Millisecond))})
			summary.Succeeded = append(summary.Succeeded, step.Name)
			continue
		}

		if step.Required {
			ctx.Observer.Event(Event{Type: EventStepFailed, Step: step.Name, Message: err.Error()})
			summary.State = StateAborted
			summary.Err = fmt.Errorf("%s failed: %w", step.Name, err)
			return summary
		}

		// A half-registered service is a standing hazard even on an
		// optional step, so activation failures get the louder event.
		var actErr *systemd.ActivationError
		if errors.As(err, &actErr) {
			ctx.Observer.Event(Event{Type: EventStepFailed, Step: step.Name,
				Message: "service unit installed but not activated: " + err.Error()})
		} else {
			ctx.Observer.Event(Event{Type: EventStepSkipped, Step: step.Name, Message: err.Error()})
		}
		summary.Skipped = append(summary.Skipped, SkippedStep{Step: step.Name, Reason: err.Error()})
	}

	summary.State = StateDone
	ctx.Observer.Printf("provisioning run %s finished in %v (%d ok, %d skipped)",
		ctx.RunID, time.Since(start).Round(time.Millisecond), len(summary.Succeeded), len(summary.Skipped))
	return summary
}
