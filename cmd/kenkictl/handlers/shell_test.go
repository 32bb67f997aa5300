package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellComposesRCFile(t *testing.T) {
	rc := filepath.Join(t.TempDir(), ".zshrc")

	require.NoError(t, Shell(context.Background(), rc))

	data, err := os.ReadFile(rc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "kenki managed")
	assert.Contains(t, string(data), "alias kenki=")
}

func TestShellIsIdempotent(t *testing.T) {
	rc := filepath.Join(t.TempDir(), ".zshrc")

	require.NoError(t, Shell(context.Background(), rc))
	first, err := os.ReadFile(rc)
	require.NoError(t, err)

	require.NoError(t, Shell(context.Background(), rc))
	second, err := os.ReadFile(rc)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
