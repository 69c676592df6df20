package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ProjectCRUD(t *testing.T) {
	s := New(t.TempDir())

	require.NoError(t, s.AddProject(Project{ID: "platform", Name: "Platform"}))
	require.NoError(t, s.AddProject(Project{ID: "mobile"}))

	projects, err := s.Projects()
	require.NoError(t, err)
	assert.Len(t, projects, 2)

	p, err := s.Project("platform")
	require.NoError(t, err)
	assert.Equal(t, "Platform", p.Name)

	require.NoError(t, s.RemoveProject("mobile"))
	_, err = s.Project("mobile")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestStore_DuplicateID(t *testing.T) {
	s := New(t.TempDir())

	require.NoError(t, s.AddProject(Project{ID: "platform"}))
	assert.ErrorIs(t, s.AddProject(Project{ID: "platform"}), ErrDuplicateID)
}

func TestStore_ComponentRoundTrip(t *testing.T) {
	s := New(t.TempDir())

	c := Component{
		ID:          "api",
		Project:     "platform",
		Path:        "/srv/api",
		VersionFile: "VERSION",
		Changelog:   "CHANGELOG.md",
		Settings:    map[string]any{"registry": "ghcr.io"},
		Extensions:  []string{"npm-publish"},
	}
	require.NoError(t, s.AddComponent(c))

	got, err := s.Component("api")
	require.NoError(t, err)
	assert.Equal(t, "platform", got.Project)
	assert.Equal(t, "ghcr.io", got.Settings["registry"])
	assert.Equal(t, []string{"npm-publish"}, got.Extensions)
}

func TestStore_MissingFilesAreEmpty(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "nowhere"))

	components, err := s.Components()
	require.NoError(t, err)
	assert.Empty(t, components)

	_, err = s.Component("api")
	assert.ErrorIs(t, err, ErrComponentNotFound)
}

func TestStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "servers.yaml"), []byte("{not yaml"), 0644))

	_, err := New(dir).Servers()
	assert.Error(t, err)
}

func TestStore_ServerCRUD(t *testing.T) {
	s := New(t.TempDir())

	require.NoError(t, s.AddServer(Server{ID: "web-1", Host: "10.0.0.5", Port: 22, Roles: []string{"web"}}))

	srv, err := s.Server("web-1")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", srv.Host)

	require.NoError(t, s.RemoveServer("web-1"))
	assert.ErrorIs(t, s.RemoveServer("web-1"), ErrServerNotFound)
}
