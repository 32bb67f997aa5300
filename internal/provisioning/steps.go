package provisioning

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kenki-os/kenkictl/internal/artifact"
	"github.com/kenki-os/kenkictl/internal/config"
	"github.com/kenki-os/kenkictl/internal/pacman"
	"github.com/kenki-os/kenkictl/internal/systemd"
)

// AssistantPath is where the image installs the assistant entry point.
const AssistantPath = "/opt/kenki/bin/kenki-assist"

// PackageInstaller is the slice of pacman.Installer the steps need.
type PackageInstaller interface {
	InstallSets(ctx context.Context, sets []pacman.PackageSet) (*pacman.InstallReport, error)
}

// ArtifactFetcher is the slice of artifact.Fetcher the steps need.
type ArtifactFetcher interface {
	Fetch(ctx context.Context, art artifact.ModelArtifact, destDir string, progress artifact.ProgressFunc) (string, error)
}

// ServiceRegistrar is the slice of systemd.Registrar the steps need.
type ServiceRegistrar interface {
	Register(ctx context.Context, unit systemd.Unit) (*systemd.Status, error)
}

// Deps carries the collaborators each step dispatches to. Every field
// has a production default in NewDeps; tests replace what they fake.
type Deps struct {
	Installer PackageInstaller
	Fetcher   ArtifactFetcher
	Registrar ServiceRegistrar

	Check   func(Requirements) error
	Merge   func(path string, patch map[string]any) (config.Document, error)
	Compose func(path, assistantPath string) (bool, error)

	Catalog  []artifact.ModelArtifact
	Progress artifact.ProgressFunc

	// ZshrcPath defaults to ~/.zshrc at step time when empty.
	ZshrcPath string
}

// Steps builds the fixed provisioning sequence for a full run. The
// order is the catalog order; it is never rearranged at runtime.
func Steps(deps Deps, skipModel bool) []Step {
	steps := []Step{
		{
			Name:       "preconditions",
			Action:     ActionCheckPreconditions,
			State:      StatePreconditions,
			Required:   true,
			Idempotent: true,
			Run:        stepPreconditions(deps),
		},
		{
			Name:       "install-packages",
			Action:     ActionInstallPackages,
			State:      StateInstalling,
			Required:   true,
			Idempotent: true,
			Run:        stepInstallPackages(deps),
		},
		{
			Name:       "write-config",
			Action:     ActionWriteConfig,
			State:      StateConfiguring,
			Required:   true,
			Idempotent: true,
			Run:        stepWriteConfig(deps),
		},
	}

	if !skipModel {
		steps = append(steps, Step{
			Name:       "fetch-model",
			Action:     ActionFetchArtifact,
			State:      StateConfiguring,
			Required:   false,
			Idempotent: false,
			Run:        stepFetchModel(deps),
		})
	}

	steps = append(steps,
		Step{
			Name:       "register-service",
			Action:     ActionRegisterService,
			State:      StateServiceSetup,
			Required:   false,
			Idempotent: true,
			Run:        stepRegisterService(deps),
		},
		Step{
			Name:       "compose-shell",
			Action:     ActionComposeShell,
			State:      StateShellCompose,
			Required:   false,
			Idempotent: true,
			Run:        stepComposeShell(deps),
		},
	)

	return steps
}

func stepPreconditions(deps Deps) func(*Context) error {
	return func(ctx *Context) error {
		return deps.Check(Requirements{
			RequireRoot:  true,
			MinFreeBytes: ctx.Plan.MinFreeBytes,
			Path:         "/",
			Binaries:     RequiredBinaries,
		})
	}
}

func stepInstallPackages(deps Deps) func(*Context) error {
	return func(ctx *Context) error {
		sets := pacman.FilterSets(pacman.DefaultSets(), ctx.Plan.PackageSets)
		report, err := deps.Installer.InstallSets(ctx, sets)
		if report != nil {
			ctx.State.InstalledSets = report.Completed
		}
		if err != nil {
			return fmt.Errorf("installed %d/%d sets: %w", len(ctx.State.InstalledSets), len(sets), err)
		}
		return nil
	}
}

// stepWriteConfig materializes the assistant config document. An empty
// patch is enough: merging creates the placeholder skeleton when no
// file exists and leaves an existing document untouched.
func stepWriteConfig(deps Deps) func(*Context) error {
	return func(ctx *Context) error {
		doc, err := deps.Merge(ctx.Plan.ConfigPath, map[string]any{})
		if err != nil {
			return err
		}
		ctx.State.Config = doc
		return nil
	}
}

func stepFetchModel(deps Deps) func(*Context) error {
	return func(ctx *Context) error {
		if ctx.ModelChoice < 0 {
			ctx.Observer.Printf("no model selected; skipping fetch (assistant will use the cloud backend)")
			return nil
		}

		art, err := artifact.Select(deps.Catalog, ctx.ModelChoice)
		if err != nil {
			return err
		}

		path, err := deps.Fetcher.Fetch(ctx, art, ctx.Plan.ModelDir, deps.Progress)
		if err != nil {
			return err
		}
		ctx.State.ModelPath = path

		// Point the assistant at the fetched model.
		doc, err := deps.Merge(ctx.Plan.ConfigPath, map[string]any{
			"local_llm": map[string]any{
				"enabled":    true,
				"model_path": path,
			},
		})
		if err != nil {
			return err
		}
		ctx.State.Config = doc
		return nil
	}
}

func stepRegisterService(deps Deps) func(*Context) error {
	return func(ctx *Context) error {
		modelPath := ctx.State.ModelPath
		if modelPath == "" {
			modelPath = filepath.Join(ctx.Plan.ModelDir, "placeholder")
		}
		unit := systemd.LLMServiceUnit(systemd.Target(ctx.Plan.ServiceTarget), modelPath)

		status, err := deps.Registrar.Register(ctx, unit)
		if status != nil {
			ctx.State.UnitPath = status.UnitPath
			ctx.State.ServiceActive = status.Active
		}
		return err
	}
}

func stepComposeShell(deps Deps) func(*Context) error {
	return func(ctx *Context) error {
		rc := deps.ZshrcPath
		if rc == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to resolve home directory: %w", err)
			}
			rc = filepath.Join(home, ".zshrc")
		}

		changed, err := deps.Compose(rc, AssistantPath)
		if err != nil {
			return err
		}
		if changed {
			ctx.Observer.Printf("updated %s", rc)
		} else {
			ctx.Observer.Printf("%s already up to date", rc)
		}
		return nil
	}
}
