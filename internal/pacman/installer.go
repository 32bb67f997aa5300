// Package pacman issues idempotent batch install requests against the
// system package manager and classifies its failures.
package pacman

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// PackageSet is a named, ordered batch of packages installed in one
// pacman transaction.
type PackageSet struct {
	Name     string
	Packages []string
}

// DefaultSets returns the KENKI tool inventory in install order.
func DefaultSets() []PackageSet {
	return []PackageSet{
		{
			Name: "dev-tools",
			Packages: []string{
				"base-devel", "git", "python", "python-pip", "go", "rust", "nodejs", "npm",
			},
		},
		{
			Name: "security-tools",
			Packages: []string{
				"nmap", "wireshark-cli", "metasploit", "sqlmap", "john", "hashcat",
				"aircrack-ng", "hydra", "nikto", "gobuster",
			},
		},
		{
			Name: "terminal-tools",
			Packages: []string{
				"zsh", "tmux", "fzf", "ripgrep", "fd", "bat", "htop", "jq",
			},
		},
		{
			Name: "ai-ml-tools",
			Packages: []string{
				"python-numpy", "python-pytorch", "python-transformers", "ollama",
			},
		},
		{
			Name: "virtualization-tools",
			Packages: []string{
				"qemu-full", "libvirt", "virt-manager", "docker",
			},
		},
	}
}

// FilterSets returns the subset of sets whose names appear in wanted,
// preserving catalog order. An empty filter selects everything.
func FilterSets(sets []PackageSet, wanted []string) []PackageSet {
	if len(wanted) == 0 {
		return sets
	}
	want := make(map[string]bool, len(wanted))
	for _, name := range wanted {
		want[name] = true
	}
	var out []PackageSet
	for _, set := range sets {
		if want[set.Name] {
			out = append(out, set)
		}
	}
	return out
}

// CommandRunner abstracts subprocess execution so tests can fake pacman.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec, returning combined output.
type ExecRunner struct{}

// Run implements CommandRunner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	// #nosec G204 - name and args come from fixed step definitions, not user input
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// InstallReport records which named sets were applied before any failure.
// Partial progress is not rolled back: packages already installed by
// earlier sets stay installed, matching pacman semantics.
type InstallReport struct {
	Completed []string
	Failed    string
}

// Installer drives pacman through a CommandRunner.
type Installer struct {
	runner CommandRunner
}

// NewInstaller returns an Installer using the given runner.
func NewInstaller(runner CommandRunner) *Installer {
	return &Installer{runner: runner}
}

// InstallSet installs one named set as a single batch. --needed makes the
// request idempotent: already-installed packages are not reinstalled and
// are never an error.
func (in *Installer) InstallSet(ctx context.Context, set PackageSet) error {
	args := append([]string{"-S", "--needed", "--noconfirm"}, set.Packages...)
	out, err := in.runner.Run(ctx, "pacman", args...)
	if err != nil {
		return classify(set.Name, string(out), err)
	}
	return nil
}

// InstallSets installs sets in order, stopping at the first failure.
// The report always lists the sets that completed before the failure.
func (in *Installer) InstallSets(ctx context.Context, sets []PackageSet) (*InstallReport, error) {
	report := &InstallReport{}
	for _, set := range sets {
		if err := in.InstallSet(ctx, set); err != nil {
			report.Failed = set.Name
			return report, err
		}
		report.Completed = append(report.Completed, set.Name)
	}
	return report, nil
}

// NetworkError is a transient download failure. Safe to retry: pacman
// transactions that never completed left no state behind.
type NetworkError struct {
	Set    string
	Output string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure installing set %s: %v", e.Set, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ConflictError is a dependency conflict requiring operator intervention.
// Retrying without changing the request cannot succeed.
type ConflictError struct {
	Set    string
	Output string
	Err    error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("package conflict installing set %s: %v", e.Set, e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// networkMarkers are pacman output fragments indicating a transport failure.
var networkMarkers = []string{
	"failed retrieving file",
	"download library error",
	"could not resolve host",
	"connection timed out",
	"error: failed to synchronize",
}

// conflictMarkers indicate an unresolvable dependency state.
var conflictMarkers = []string{
	"conflicting dependencies",
	"unresolvable package conflicts",
	"breaks dependency",
	"could not satisfy dependencies",
}

// classify maps pacman output to the retryable/fatal error taxonomy.
// Unrecognized failures default to ConflictError: retrying an unknown
// failure class against the package database is not safe.
func classify(set, output string, err error) error {
	lower := strings.ToLower(output)
	for _, marker := range networkMarkers {
		if strings.Contains(lower, marker) {
			return &NetworkError{Set: set, Output: output, Err: err}
		}
	}
	for _, marker := range conflictMarkers {
		if strings.Contains(lower, marker) {
			return &ConflictError{Set: set, Output: output, Err: err}
		}
	}
	return &ConflictError{Set: set, Output: output, Err: err}
}
