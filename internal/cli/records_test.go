package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectAddListRemove(t *testing.T) {
	app, stdout, _ := testApp(t, &MockReleaser{})

	code := execute(t, app, "project", "add", "platform", "--name", "Platform")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "added project platform")

	stdout.Reset()
	code = execute(t, app, "project", "list")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "platform")
	assert.Contains(t, stdout.String(), "Platform")

	code = execute(t, app, "project", "remove", "platform")
	require.Equal(t, 0, code)

	stdout.Reset()
	code = execute(t, app, "project", "list")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "no projects")
}

func TestProjectAdd_DuplicateID(t *testing.T) {
	app, _, stderr := testApp(t, &MockReleaser{})

	require.Equal(t, 0, execute(t, app, "project", "add", "platform"))
	code := execute(t, app, "project", "add", "platform")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Error:")
}

func TestProjectShow_NotFound(t *testing.T) {
	app, _, stderr := testApp(t, &MockReleaser{})

	code := execute(t, app, "project", "show", "ghost")

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Error:")
}

func TestComponentAddAndShow(t *testing.T) {
	app, stdout, _ := testApp(t, &MockReleaser{})

	code := execute(t, app, "component", "add", "api",
		"--project", "platform",
		"--path", "services/api",
		"--changelog", "CHANGELOG.md",
		"--build-command", "make build",
		"--extension", "npm")
	require.Equal(t, 0, code)

	stdout.Reset()
	code = execute(t, app, "component", "show", "api")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "api")
	assert.Contains(t, stdout.String(), "services/api")
	assert.Contains(t, stdout.String(), "project=platform")
}

func TestComponentRemove_NotFound(t *testing.T) {
	app, _, _ := testApp(t, &MockReleaser{})

	code := execute(t, app, "component", "remove", "ghost")

	assert.Equal(t, 1, code)
}

func TestServerAddRequiresHost(t *testing.T) {
	app, _, _ := testApp(t, &MockReleaser{})

	code := execute(t, app, "server", "add", "web-1")

	assert.Equal(t, 1, code)
}

func TestServerAddAndList(t *testing.T) {
	app, stdout, _ := testApp(t, &MockReleaser{})

	code := execute(t, app, "server", "add", "web-1", "--host", "10.0.0.5", "--port", "22", "--role", "web")
	require.Equal(t, 0, code)

	stdout.Reset()
	code = execute(t, app, "server", "list")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "web-1")
	assert.Contains(t, stdout.String(), "10.0.0.5:22")
}
