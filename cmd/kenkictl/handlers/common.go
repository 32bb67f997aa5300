// Package handlers implements command execution for the kenkictl CLI.
// Commands bind flags and delegate here; factory variables provide the
// seams tests replace.
package handlers

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kenki-os/kenkictl/internal/artifact"
	"github.com/kenki-os/kenkictl/internal/config"
	"github.com/kenki-os/kenkictl/internal/pacman"
	"github.com/kenki-os/kenkictl/internal/provisioning"
	"github.com/kenki-os/kenkictl/internal/shellenv"
	"github.com/kenki-os/kenkictl/internal/systemd"
)

// ExitError carries a process exit code through cobra back to main.
// The summary has already been printed when this is returned.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Factory variables - replaced in tests.
var (
	loadPlan = config.LoadPlan

	newLogger = func(verbose bool) (*zap.Logger, error) {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		return cfg.Build()
	}

	defaultDeps = func() provisioning.Deps {
		return provisioning.Deps{
			Installer: pacman.NewInstaller(pacman.ExecRunner{}),
			Fetcher:   artifact.NewFetcher(nil),
			Registrar: systemd.NewRegistrar(systemd.ExecRunner{}),
			Check:     provisioning.CheckPreconditions,
			Merge:     config.Merge,
			Compose:   shellenv.Compose,
			Catalog:   artifact.DefaultCatalog(),
		}
	}
)

// observerProgress adapts the Observer to the fetcher's progress
// callback, emitting one event per 10% so logs stay bounded.
func observerProgress(obs provisioning.Observer) artifact.ProgressFunc {
	lastDecile := -1
	return func(done, total uint64) {
		if total == 0 {
			return
		}
		decile := int(done * 10 / total)
		if decile > lastDecile {
			lastDecile = decile
			obs.Event(provisioning.Event{
				Type:    provisioning.EventProgress,
				Step:    "fetch-model",
				Message: fmt.Sprintf("%d%%", decile*10),
			})
		}
	}
}
