package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kenki-os/kenkictl/internal/config"
	"github.com/kenki-os/kenkictl/internal/util/prerequisites"
)

func stubDoctorSeams(t *testing.T, results *prerequisites.CheckResults, free uint64, assistant bool) {
	t.Helper()

	origTools, origFree, origProbe := checkTools, freeSpace, probeAssistant
	t.Cleanup(func() {
		checkTools, freeSpace, probeAssistant = origTools, origFree, origProbe
	})

	checkTools = func() *prerequisites.CheckResults { return results }
	freeSpace = func(string) (uint64, error) { return free, nil }
	probeAssistant = func(context.Context) bool { return assistant }
}

func doctorResults() *prerequisites.CheckResults {
	return &prerequisites.CheckResults{
		Results: []prerequisites.CheckResult{
			{Tool: prerequisites.Tool{Name: "pacman", Required: true}, Found: true, Path: "/usr/bin/pacman", Version: "Pacman v7.0.0"},
			{Tool: prerequisites.Tool{Name: "mkarchiso", Required: true}, Found: false},
		},
		Missing: []prerequisites.Tool{{Name: "mkarchiso", Required: true}},
	}
}

func TestCollectStatusFreshSystem(t *testing.T) {
	fakes := stubSeams(t)
	stubDoctorSeams(t, doctorResults(), 5<<30, false)

	status := collectStatus(context.Background(), fakes.plan)

	require.Len(t, status.Tools, 2)
	assert.True(t, status.Tools[0].Found)
	assert.Equal(t, "Pacman v7.0.0", status.Tools[0].Version)
	assert.False(t, status.Tools[1].Found)

	assert.Equal(t, uint64(5<<30), status.Disk.Available)
	assert.Equal(t, fakes.plan.ModelDir, status.Disk.Path)

	// No config file yet: Load falls back to the placeholder defaults,
	// which count as valid but activate neither backend.
	assert.False(t, status.Config.Exists)
	assert.True(t, status.Config.Valid)
	assert.False(t, status.CloudBackend)
	assert.False(t, status.LocalBackend)
	assert.False(t, status.Assistant)
}

func TestCollectStatusConfiguredBackends(t *testing.T) {
	fakes := stubSeams(t)
	stubDoctorSeams(t, doctorResults(), 5<<30, true)

	modelPath := filepath.Join(t.TempDir(), "m.gguf")
	require.NoError(t, os.WriteFile(modelPath, []byte("weights"), 0o644))

	_, err := config.Merge(fakes.plan.ConfigPath, map[string]any{
		"anthropic_api_key": "sk-ant-real-key",
		"local_llm": map[string]any{
			"enabled":    true,
			"model_path": modelPath,
		},
	})
	require.NoError(t, err)

	status := collectStatus(context.Background(), fakes.plan)

	assert.True(t, status.Config.Exists)
	assert.True(t, status.Config.Valid)
	assert.True(t, status.CloudBackend)
	assert.True(t, status.LocalBackend)
	assert.True(t, status.Assistant)
}

func TestCollectStatusPlaceholderKeyIsNotCloudReady(t *testing.T) {
	fakes := stubSeams(t)
	stubDoctorSeams(t, doctorResults(), 0, false)

	_, err := config.Merge(fakes.plan.ConfigPath, map[string]any{})
	require.NoError(t, err)

	status := collectStatus(context.Background(), fakes.plan)
	assert.False(t, status.CloudBackend, "the placeholder key must not count as configured")
}

func TestCollectStatusCorruptConfig(t *testing.T) {
	fakes := stubSeams(t)
	stubDoctorSeams(t, doctorResults(), 0, false)

	require.NoError(t, os.WriteFile(fakes.plan.ConfigPath, []byte("{not json"), 0o644))

	status := collectStatus(context.Background(), fakes.plan)

	assert.True(t, status.Config.Exists)
	assert.False(t, status.Config.Valid)
	assert.NotEmpty(t, status.Config.Message)
	assert.False(t, status.CloudBackend)
}

func TestLocalModelReadyNeedsFileOnDisk(t *testing.T) {
	doc := config.Document{
		"local_llm": map[string]any{
			"enabled":    true,
			"model_path": "/nonexistent/m.gguf",
		},
	}
	assert.False(t, localModelReady(doc))
}

func TestDiskProbePathWalksUp(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, dir, diskProbePath(filepath.Join(dir, "models")))
	assert.Equal(t, dir, diskProbePath(dir))
	assert.Equal(t, "/", diskProbePath("/no/such/root/anywhere"))
}
