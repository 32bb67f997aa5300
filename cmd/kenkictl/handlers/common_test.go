package handlers

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/kenki-os/kenkictl/internal/artifact"
	"github.com/kenki-os/kenkictl/internal/config"
	"github.com/kenki-os/kenkictl/internal/pacman"
	"github.com/kenki-os/kenkictl/internal/provisioning"
	"github.com/kenki-os/kenkictl/internal/systemd"
)

type stubInstaller struct {
	err   error
	calls int
}

func (s *stubInstaller) InstallSets(_ context.Context, sets []pacman.PackageSet) (*pacman.InstallReport, error) {
	s.calls++
	report := &pacman.InstallReport{}
	for _, set := range sets {
		if s.err != nil {
			report.Failed = set.Name
			return report, s.err
		}
		report.Completed = append(report.Completed, set.Name)
	}
	return report, nil
}

type stubFetcher struct {
	path  string
	err   error
	calls int
}

func (s *stubFetcher) Fetch(_ context.Context, _ artifact.ModelArtifact, _ string, _ artifact.ProgressFunc) (string, error) {
	s.calls++
	return s.path, s.err
}

type stubRegistrar struct {
	status *systemd.Status
	err    error
}

func (s *stubRegistrar) Register(_ context.Context, _ systemd.Unit) (*systemd.Status, error) {
	return s.status, s.err
}

type seamFakes struct {
	plan      *config.Plan
	installer *stubInstaller
	fetcher   *stubFetcher
	registrar *stubRegistrar
	composed  []string
}

// stubSeams swaps every handler seam for test doubles backed by temp
// paths and restores the originals when the test finishes.
func stubSeams(t *testing.T) *seamFakes {
	t.Helper()

	dir := t.TempDir()
	fakes := &seamFakes{
		plan:      config.DefaultPlan(),
		installer: &stubInstaller{},
		fetcher:   &stubFetcher{path: filepath.Join(dir, "models", "m.gguf")},
		registrar: &stubRegistrar{status: &systemd.Status{
			UnitPath: filepath.Join(dir, "kenki-llm.service"),
			Changed:  true,
			Active:   true,
		}},
	}
	fakes.plan.ConfigPath = filepath.Join(dir, "config.json")
	fakes.plan.ModelDir = filepath.Join(dir, "models")

	origLoad, origLogger, origDeps, origSelect := loadPlan, newLogger, defaultDeps, selectModel
	t.Cleanup(func() {
		loadPlan, newLogger, defaultDeps, selectModel = origLoad, origLogger, origDeps, origSelect
	})

	loadPlan = func(string) (*config.Plan, error) { return fakes.plan, nil }
	newLogger = func(bool) (*zap.Logger, error) { return zap.NewNop(), nil }
	selectModel = func([]artifact.ModelArtifact) (int, error) {
		t.Fatal("interactive menu must not open in tests")
		return -1, nil
	}
	defaultDeps = func() provisioning.Deps {
		return provisioning.Deps{
			Installer: fakes.installer,
			Fetcher:   fakes.fetcher,
			Registrar: fakes.registrar,
			Check:     func(provisioning.Requirements) error { return nil },
			Merge:     config.Merge,
			Compose: func(path, _ string) (bool, error) {
				fakes.composed = append(fakes.composed, path)
				return true, nil
			},
			Catalog:   artifact.DefaultCatalog(),
			ZshrcPath: filepath.Join(dir, ".zshrc"),
		}
	}

	return fakes
}
