package release

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipward/internal/changelog"
	"shipward/internal/store"
)

func seedStore(t *testing.T, componentDir string) *store.Store {
	t.Helper()
	st := store.New(t.TempDir())
	require.NoError(t, st.AddProject(store.Project{
		ID:       "platform",
		Name:     "Platform",
		Settings: map[string]any{"remote": "upstream", "channel": "stable"},
	}))
	require.NoError(t, st.AddComponent(store.Component{
		ID:        "api",
		Project:   "platform",
		Path:      componentDir,
		Changelog: "CHANGELOG.md",
		Settings:  map[string]any{"channel": "beta"},
	}))
	return st
}

func newBuilder(t *testing.T, componentDir, version, notes string) *ContextBuilder {
	t.Helper()
	return &ContextBuilder{
		Store:     seedStore(t, componentDir),
		Versions:  newMemVersions(filepath.Join(componentDir, "VERSION"), version),
		Notes:     &stubNotes{notes: notes},
		Defaults:  map[string]any{"remote": "origin", "registry": "ghcr.io"},
		TagPrefix: "v",
	}
}

func TestContextBuilder_Build(t *testing.T) {
	dir := t.TempDir()
	b := newBuilder(t, dir, "1.4.0", "- added retry")

	rc, err := b.Build("api", map[string]any{"dry_run": true})
	require.NoError(t, err)

	assert.Equal(t, "api", rc.Payload.ComponentID)
	assert.Equal(t, dir, rc.Payload.LocalPath)
	assert.Equal(t, "1.4.0", rc.Payload.Version)
	assert.Equal(t, "v1.4.0", rc.Payload.Tag)
	assert.Equal(t, "- added retry", rc.Payload.Notes)
	assert.Empty(t, rc.Payload.Artifacts)
	require.NotNil(t, rc.Project)
	assert.Equal(t, "platform", rc.Project.ID)
}

func TestContextBuilder_SettingsMergeOrder(t *testing.T) {
	b := newBuilder(t, t.TempDir(), "1.0.0", "")

	rc, err := b.Build("api", nil)
	require.NoError(t, err)

	// Module default survives when no scope overrides it.
	assert.Equal(t, "ghcr.io", rc.Settings["registry"])
	// Project scope overrides module defaults.
	assert.Equal(t, "upstream", rc.Settings["remote"])
	// Component scope overrides project scope.
	assert.Equal(t, "beta", rc.Settings["channel"])
}

func TestContextBuilder_BumpInput(t *testing.T) {
	b := newBuilder(t, t.TempDir(), "1.4.2", "")

	rc, err := b.Build("api", map[string]any{"bump": "minor"})
	require.NoError(t, err)
	assert.Equal(t, "1.5.0", rc.Payload.Version)
	assert.Equal(t, "v1.5.0", rc.Payload.Tag)
}

func TestContextBuilder_TagPrefixSetting(t *testing.T) {
	dir := t.TempDir()
	b := newBuilder(t, dir, "2.0.0", "")
	st := store.New(t.TempDir())
	require.NoError(t, st.AddComponent(store.Component{
		ID:       "api",
		Path:     dir,
		Settings: map[string]any{"tag_prefix": "api/"},
	}))
	b.Store = st

	rc, err := b.Build("api", nil)
	require.NoError(t, err)
	assert.Equal(t, "api/2.0.0", rc.Payload.Tag)
}

func TestContextBuilder_UnboundProjectWarns(t *testing.T) {
	dir := t.TempDir()
	st := store.New(t.TempDir())
	require.NoError(t, st.AddComponent(store.Component{
		ID:      "api",
		Path:    dir,
		Project: "ghost",
	}))
	b := &ContextBuilder{
		Store:     st,
		Versions:  newMemVersions(filepath.Join(dir, "VERSION"), "1.0.0"),
		Notes:     &stubNotes{},
		TagPrefix: "v",
	}

	rc, err := b.Build("api", nil)
	require.NoError(t, err)
	assert.Nil(t, rc.Project)
	assert.NotEmpty(t, rc.Warnings)
}

func TestContextBuilder_ChangelogWarnings(t *testing.T) {
	t.Run("empty unreleased section", func(t *testing.T) {
		b := newBuilder(t, t.TempDir(), "1.0.0", "")
		rc, err := b.Build("api", nil)
		require.NoError(t, err)
		assert.Contains(t, rc.Warnings, "no unreleased changelog entries")
	})

	t.Run("changelog file missing", func(t *testing.T) {
		b := newBuilder(t, t.TempDir(), "1.0.0", "")
		b.Notes = &stubNotes{err: changelog.ErrNoChangelog}
		rc, err := b.Build("api", nil)
		require.NoError(t, err)
		assert.Contains(t, rc.Warnings, "changelog CHANGELOG.md not found")
	})
}

func TestContextBuilder_MissingVersionFile(t *testing.T) {
	dir := t.TempDir()
	b := newBuilder(t, dir, "1.0.0", "")
	b.Versions = &memVersions{versions: map[string]string{}}

	_, err := b.Build("api", nil)
	assert.Error(t, err)
}

func TestContextBuilder_UnknownComponent(t *testing.T) {
	b := newBuilder(t, t.TempDir(), "1.0.0", "")

	_, err := b.Build("ghost", nil)
	assert.ErrorIs(t, err, store.ErrComponentNotFound)
}

func TestContext_Vars(t *testing.T) {
	rc := testContext("/srv/api")
	rc.Project = &store.Project{ID: "platform", Name: "Platform"}

	vars := rc.Vars()

	out, err := Resolve("{{release.tag}} {{component.id}} {{project.id}} {{settings.remote}}", vars)
	require.NoError(t, err)
	assert.Equal(t, "v1.4.0 api platform origin", out)
}
