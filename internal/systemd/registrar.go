// Package systemd renders and registers service units for the assistant's
// background processes.
package systemd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"
)

// Target is the scope a unit is registered under.
type Target string

const (
	// TargetUser installs under ~/.config/systemd/user and talks to the
	// user manager (systemctl --user).
	TargetUser Target = "user"
	// TargetSystem installs under /etc/systemd/system.
	TargetSystem Target = "system"
)

// Unit describes a service to register. Rendered fresh each run from
// the template plus runtime-resolved paths.
type Unit struct {
	Name             string
	Description      string
	ExecStart        string
	WorkingDirectory string
	Restart          string
	Target           Target
}

// unitTemplate is the systemd unit layout. Restart defaults are filled
// by LLMServiceUnit, not here.
const unitTemplate = `[Unit]
Description={{.Description}}
After=network.target

[Service]
Type=simple
ExecStart={{.ExecStart}}
{{- if .WorkingDirectory}}
WorkingDirectory={{.WorkingDirectory}}
{{- end}}
Restart={{.Restart}}
RestartSec=5

[Install]
WantedBy={{if eq .Target "user"}}default.target{{else}}multi-user.target{{end}}
`

// LLMServiceUnit returns the unit serving the local model endpoint.
func LLMServiceUnit(target Target, modelPath string) Unit {
	return Unit{
		Name:             "kenki-llm.service",
		Description:      "KENKI local LLM endpoint",
		ExecStart:        "/usr/bin/ollama serve",
		WorkingDirectory: filepath.Dir(modelPath),
		Restart:          "on-failure",
		Target:           target,
	}
}

// RegistrationError means writing the unit file failed; no system state
// changed and the operation can simply be re-run.
type RegistrationError struct {
	Unit string
	Err  error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("failed to register unit %s: %v", e.Unit, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// ActivationError means the unit file was written but enable/start
// failed. A stale unit file is now present, so this is surfaced to the
// operator even when the step itself is optional.
type ActivationError struct {
	Unit string
	Op   string
	Err  error
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("failed to %s unit %s (unit file is installed): %v", e.Op, e.Unit, e.Err)
}

func (e *ActivationError) Unwrap() error { return e.Err }

// CommandRunner abstracts systemctl so tests can fake the service manager.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements CommandRunner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	// #nosec G204 - fixed systemctl invocations
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Status reports the outcome of a registration.
type Status struct {
	UnitPath string
	Changed  bool
	Active   bool
}

// Registrar installs and activates units.
type Registrar struct {
	runner CommandRunner

	// unitDir overrides the target-derived unit directory in tests.
	unitDir string
}

// NewRegistrar returns a Registrar using the given runner.
func NewRegistrar(runner CommandRunner) *Registrar {
	return &Registrar{runner: runner}
}

// Render produces the unit file contents.
func Render(unit Unit) ([]byte, error) {
	tmpl, err := template.New("unit").Parse(unitTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse unit template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, unit); err != nil {
		return nil, fmt.Errorf("failed to render unit: %w", err)
	}
	return buf.Bytes(), nil
}

// UnitDir returns the install directory for a target scope.
func (r *Registrar) UnitDir(target Target) (string, error) {
	if r.unitDir != "" {
		return r.unitDir, nil
	}
	if target == TargetSystem {
		return "/etc/systemd/system", nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "systemd", "user"), nil
}

// Register writes the unit file, reloads the manager, and enables and
// starts the unit. Re-registering identical content skips the write but
// still ensures the unit is enabled and running.
func (r *Registrar) Register(ctx context.Context, unit Unit) (*Status, error) {
	rendered, err := Render(unit)
	if err != nil {
		return nil, &RegistrationError{Unit: unit.Name, Err: err}
	}

	dir, err := r.UnitDir(unit.Target)
	if err != nil {
		return nil, &RegistrationError{Unit: unit.Name, Err: err}
	}

	path := filepath.Join(dir, unit.Name)
	status := &Status{UnitPath: path}

	existing, readErr := os.ReadFile(path) // #nosec G304
	if readErr != nil || !bytes.Equal(existing, rendered) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &RegistrationError{Unit: unit.Name, Err: err}
		}
		if err := os.WriteFile(path, rendered, 0o644); err != nil {
			return nil, &RegistrationError{Unit: unit.Name, Err: err}
		}
		status.Changed = true
	}

	for _, op := range []string{"daemon-reload", "enable", "start"} {
		args := []string{}
		if unit.Target == TargetUser {
			args = append(args, "--user")
		}
		args = append(args, op)
		if op != "daemon-reload" {
			args = append(args, unit.Name)
		}
		if out, err := r.runner.Run(ctx, "systemctl", args...); err != nil {
			return status, &ActivationError{
				Unit: unit.Name,
				Op:   op,
				Err:  fmt.Errorf("%w: %s", err, bytes.TrimSpace(out)),
			}
		}
	}

	status.Active = true
	return status, nil
}
