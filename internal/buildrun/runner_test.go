package buildrun

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveArtifacts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dist"), 0755))
	for _, name := range []string{"app-linux-amd64.tar.gz", "app-darwin-arm64.tar.gz", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "dist", name), []byte("x"), 0644))
	}

	artifacts, err := ResolveArtifacts(dir, []ArtifactGlob{
		{Pattern: "dist/*.tar.gz", Type: "archive", Platform: "any"},
	})
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, "archive", artifacts[0].Type)
	assert.Equal(t, filepath.Join("dist", "app-darwin-arm64.tar.gz"), artifacts[0].Path)
}

func TestResolveArtifacts_NoMatches(t *testing.T) {
	artifacts, err := ResolveArtifacts(t.TempDir(), []ArtifactGlob{{Pattern: "dist/*.zip", Type: "archive"}})
	require.NoError(t, err)
	assert.Empty(t, artifacts)
}

func TestResolveArtifacts_BadPattern(t *testing.T) {
	_, err := ResolveArtifacts(t.TempDir(), []ArtifactGlob{{Pattern: "dist/[", Type: "archive"}})
	assert.Error(t, err)
}

func TestMockRunner_RecordsCommands(t *testing.T) {
	m := &MockRunner{Result: Result{Stdout: "ok"}}

	res, err := m.Run(context.Background(), "/tmp", "make build")
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Equal(t, []string{"make build"}, m.Commands)
}
