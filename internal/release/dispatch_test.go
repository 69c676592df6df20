package release

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipward/internal/buildrun"
	"shipward/internal/extension"
	"shipward/internal/gitops"
)

func installTestExtension(t *testing.T, dir, name string, actions ...string) {
	t.Helper()
	extDir := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(extDir, 0755))
	manifest := "name: " + name + "\nruntime:\n  command: run\nactions:\n"
	for _, a := range actions {
		manifest += "  - " + a + "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(extDir, extension.ManifestFile), []byte(manifest), 0644))
}

func testDispatcher(t *testing.T, extRunner extension.Runner, extensions ...string) (*Dispatcher, *gitops.MockGit) {
	t.Helper()
	extDir := t.TempDir()
	for _, name := range extensions {
		installTestExtension(t, extDir, name, "release."+name)
	}
	registry, err := extension.Discover(extDir)
	require.NoError(t, err)

	git := &gitops.MockGit{}
	return NewDispatcher(Collaborators{
		Git:       git,
		Builder:   &buildrun.MockRunner{},
		Versions:  newMemVersions("unused", "1.4.0"),
		Notes:     &stubNotes{},
		Registry:  registry,
		ExtRunner: extRunner,
	}), git
}

func TestDispatcher_ResolvesCoreTypes(t *testing.T) {
	d, _ := testDispatcher(t, &extension.MockRunner{})

	for _, typ := range []string{"build", "changes", "version", "git.commit", "git.tag", "git.push", "module.run"} {
		_, ok := d.Resolve(typ, nil)
		assert.True(t, ok, "core type %s", typ)
	}
}

func TestDispatcher_ResolvesExtensionAction(t *testing.T) {
	d, _ := testDispatcher(t, &extension.MockRunner{}, "npm.publish")

	_, ok := d.Resolve("npm.publish", []string{"npm.publish"})
	assert.True(t, ok)

	_, ok = d.Resolve("docker.push", nil)
	assert.False(t, ok)
}

func TestDispatcher_UnresolvableTypeIsMissing(t *testing.T) {
	d, _ := testDispatcher(t, &extension.MockRunner{})
	rc := testContext(t.TempDir())

	res := d.Dispatch(context.Background(), rc, step("publish", "npm.publish"))

	assert.Equal(t, StatusMissing, res.Status)
	require.Len(t, res.Missing, 1)
	assert.Contains(t, res.Missing[0], "npm.publish")
}

func TestDispatcher_UnresolvedTemplateIsMissing(t *testing.T) {
	d, _ := testDispatcher(t, &extension.MockRunner{})
	rc := testContext(t.TempDir())

	spec := step("commit", "git.commit")
	spec.Config = map[string]any{"message": "release {{inputs.ticket}}"}

	res := d.Dispatch(context.Background(), rc, spec)

	assert.Equal(t, StatusMissing, res.Status)
	assert.Equal(t, []string{"inputs.ticket"}, res.Missing)
}

func TestDispatcher_TemplateResolutionFeedsAction(t *testing.T) {
	d, git := testDispatcher(t, &extension.MockRunner{})
	rc := testContext(t.TempDir())
	git.Clean = false

	spec := step("commit", "git.commit")
	spec.Config = map[string]any{"message": "release {{release.version}}"}

	res := d.Dispatch(context.Background(), rc, spec)

	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, []string{"release 1.4.0"}, git.Commits)
}

func TestDispatcher_ExtensionOutcome(t *testing.T) {
	runner := &extension.MockRunner{Outcomes: map[string]*extension.Outcome{
		"npm.publish": {Success: true, Hints: []string{"published"}},
	}}
	d, _ := testDispatcher(t, runner, "npm.publish")
	rc := testContext(t.TempDir())

	spec := step("publish", "npm.publish")
	spec.Config = map[string]any{"tag": "{{release.tag}}"}

	res := d.Dispatch(context.Background(), rc, spec)

	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, []string{"published"}, res.Hints)

	// The extension received the shared action payload with resolved config.
	require.Len(t, runner.Invocations, 1)
	var payload struct {
		Release Payload        `json:"release"`
		Config  map[string]any `json:"config"`
	}
	require.NoError(t, json.Unmarshal(runner.Invocations[0].Payload, &payload))
	assert.Equal(t, "1.4.0", payload.Release.Version)
	assert.Equal(t, "v1.4.0", payload.Config["tag"])
}

func TestDispatcher_ExtensionFailureIsFailed(t *testing.T) {
	runner := &extension.MockRunner{Outcomes: map[string]*extension.Outcome{
		"npm.publish": {Success: false, Data: map[string]any{"exit_code": 2}},
	}}
	d, _ := testDispatcher(t, runner, "npm.publish")

	res := d.Dispatch(context.Background(), testContext(t.TempDir()), step("publish", "npm.publish"))

	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, 2, res.Data["exit_code"])
}

func TestDispatcher_ActionErrorIsFailed(t *testing.T) {
	d, git := testDispatcher(t, &extension.MockRunner{})
	git.Clean = false
	git.Err = assert.AnError

	res := d.Dispatch(context.Background(), testContext(t.TempDir()), step("commit", "git.commit"))

	assert.Equal(t, StatusFailed, res.Status)
	assert.NotEmpty(t, res.Warnings)
}
