package provisioning

import (
	"context"

	"github.com/google/uuid"

	"github.com/kenki-os/kenkictl/internal/config"
)

// State holds the shared results of provisioning steps. It is
// progressively populated as each step completes and read by later
// steps that need earlier results.
type State struct {
	// Installing results.
	InstalledSets []string

	// Configuring results.
	Config config.Document

	// Artifact results.
	ModelPath string

	// ServiceSetup results.
	UnitPath      string
	ServiceActive bool
}

// Context wraps the dependencies and state shared by all steps of one
// provisioning run.
type Context struct {
	context.Context

	RunID    string
	Plan     *config.Plan
	State    *State
	Observer Observer
	DryRun   bool

	// ModelChoice is the validated catalog selection, or -1 when the
	// artifact step should resolve it interactively or skip.
	ModelChoice int
}

// NewContext creates a provisioning context with a fresh run ID.
func NewContext(ctx context.Context, plan *config.Plan, observer Observer) *Context {
	runID := uuid.NewString()
	return &Context{
		Context:     ctx,
		RunID:       runID,
		Plan:        plan,
		State:       &State{},
		Observer:    observer.WithFields(map[string]string{"run_id": runID}),
		ModelChoice: -1,
	}
}
