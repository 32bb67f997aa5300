package shellenv

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const assistant = "/opt/kenki/bin/kenki-assist"

func rcPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), ".zshrc")
}

func TestComposeCreatesFileWhenAbsent(t *testing.T) {
	path := rcPath(t)

	changed, err := Compose(path, assistant)
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, beginMarker)
	assert.Contains(t, content, endMarker)
	assert.Contains(t, content, "alias kenki-explain='"+assistant+" explain'")
	assert.Contains(t, content, "precmd_functions+=(kenki_prompt_hook)")
}

func TestComposePreservesExistingContent(t *testing.T) {
	path := rcPath(t)
	own := "# my prompt\nexport EDITOR=vim\n"
	require.NoError(t, os.WriteFile(path, []byte(own), 0o644))

	changed, err := Compose(path, assistant)
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, own), "user content must stay at the top untouched")
	assert.Contains(t, content, beginMarker)
}

func TestComposeIdempotent(t *testing.T) {
	path := rcPath(t)
	require.NoError(t, os.WriteFile(path, []byte("export EDITOR=vim\n"), 0o644))

	_, err := Compose(path, assistant)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	changed, err := Compose(path, assistant)
	require.NoError(t, err)
	assert.False(t, changed)

	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComposeReplacesOnlyManagedBlock(t *testing.T) {
	path := rcPath(t)
	content := "top\n\n" + beginMarker + "\nold stuff\n" + endMarker + "\nbottom\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	changed, err := Compose(path, assistant)
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	got := string(data)
	assert.Contains(t, got, "top\n")
	assert.Contains(t, got, "bottom\n")
	assert.NotContains(t, got, "old stuff")
	assert.Equal(t, 1, strings.Count(got, beginMarker))
}

func TestComposeBacksUpBeforeRewrite(t *testing.T) {
	orig := now
	now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { now = orig })

	path := rcPath(t)
	own := "export EDITOR=vim\n"
	require.NoError(t, os.WriteFile(path, []byte(own), 0o644))

	_, err := Compose(path, assistant)
	require.NoError(t, err)

	backup, err := os.ReadFile(path + ".bak.2025-06-01T12-00-00Z")
	require.NoError(t, err)
	assert.Equal(t, own, string(backup))
}

func TestComposeRejectsUnterminatedBlock(t *testing.T) {
	path := rcPath(t)
	require.NoError(t, os.WriteFile(path, []byte(beginMarker+"\nno end in sight\n"), 0o644))

	_, err := Compose(path, assistant)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated")
}
