package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan is the optional provisioning plan read from kenki.yaml. Every
// field has a default so provisioning works with no plan file at all.
type Plan struct {
	// ConfigPath overrides where the assistant config document lives.
	ConfigPath string `yaml:"config_path"`

	// ModelDir is where fetched model artifacts are stored.
	ModelDir string `yaml:"model_dir"`

	// ServiceTarget selects user or system scope for the LLM service unit.
	ServiceTarget string `yaml:"service_target"`

	// PackageSets restricts which named sets are installed. Empty means all.
	PackageSets []string `yaml:"package_sets"`

	// SkipModel disables the artifact fetch step entirely.
	SkipModel bool `yaml:"skip_model"`

	// MinFreeBytes is the free-space floor checked during preflight.
	MinFreeBytes uint64 `yaml:"min_free_bytes"`
}

// Plan defaults. 2 GiB covers the package sets; model downloads check
// their own budget against the artifact's declared size.
const (
	DefaultModelDir      = "/var/lib/kenki/models"
	DefaultServiceTarget = "user"
	DefaultMinFreeBytes  = 2 << 30
)

// DefaultPlan returns a plan with all defaults applied.
func DefaultPlan() *Plan {
	return &Plan{
		ConfigPath:    DefaultPath,
		ModelDir:      DefaultModelDir,
		ServiceTarget: DefaultServiceTarget,
		MinFreeBytes:  DefaultMinFreeBytes,
	}
}

// LoadPlan reads a plan file and fills in defaults for anything unset.
// A missing file is not an error; the defaults are returned.
func LoadPlan(path string) (*Plan, error) {
	plan := DefaultPlan()

	data, err := os.ReadFile(path) // #nosec G304
	if os.IsNotExist(err) {
		return plan, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	if err := yaml.Unmarshal(data, plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan file: %w", err)
	}

	if plan.ConfigPath == "" {
		plan.ConfigPath = DefaultPath
	}
	if plan.ModelDir == "" {
		plan.ModelDir = DefaultModelDir
	}
	if plan.ServiceTarget == "" {
		plan.ServiceTarget = DefaultServiceTarget
	}
	if plan.MinFreeBytes == 0 {
		plan.MinFreeBytes = DefaultMinFreeBytes
	}

	if plan.ServiceTarget != "user" && plan.ServiceTarget != "system" {
		return nil, fmt.Errorf("invalid service_target %q: must be \"user\" or \"system\"", plan.ServiceTarget)
	}

	return plan, nil
}
