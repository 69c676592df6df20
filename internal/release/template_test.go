package release

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func templateVars() map[string]any {
	return map[string]any{
		"release": map[string]any{
			"version": "1.4.0",
			"tag":     "v1.4.0",
		},
		"settings": map[string]any{
			"registry": "ghcr.io",
			"replicas": 3,
		},
		"inputs": map[string]any{},
	}
}

func TestResolve(t *testing.T) {
	out, err := Resolve("publish {{release.tag}} to {{settings.registry}}", templateVars())
	require.NoError(t, err)
	assert.Equal(t, "publish v1.4.0 to ghcr.io", out)
}

func TestResolve_NoPlaceholders(t *testing.T) {
	out, err := Resolve("plain text", templateVars())
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)
}

func TestResolve_WhitespaceInsidePlaceholder(t *testing.T) {
	out, err := Resolve("{{ release.version }}", templateVars())
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", out)
}

func TestResolve_NonStringLeaf(t *testing.T) {
	out, err := Resolve("scale to {{settings.replicas}}", templateVars())
	require.NoError(t, err)
	assert.Equal(t, "scale to 3", out)
}

func TestResolve_UnresolvedPath(t *testing.T) {
	_, err := Resolve("{{release.codename}}", templateVars())

	var unresolved *UnresolvedPathError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "release.codename", unresolved.Path)
}

func TestResolve_PathThroughNonMap(t *testing.T) {
	_, err := Resolve("{{release.version.major}}", templateVars())
	assert.Error(t, err)
}

func TestResolveValue_WholePlaceholderKeepsType(t *testing.T) {
	v, err := ResolveValue("{{settings.replicas}}", templateVars())
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestResolveConfig(t *testing.T) {
	cfg := map[string]any{
		"message": "release {{release.version}}",
		"nested": map[string]any{
			"tag": "{{release.tag}}",
		},
		"list":  []any{"{{settings.registry}}", 7},
		"count": 2,
	}

	out, err := ResolveConfig(cfg, templateVars())
	require.NoError(t, err)
	assert.Equal(t, "release 1.4.0", out["message"])
	assert.Equal(t, "v1.4.0", out["nested"].(map[string]any)["tag"])
	assert.Equal(t, "ghcr.io", out["list"].([]any)[0])
	assert.Equal(t, 2, out["count"])
}

func TestResolveConfig_Nil(t *testing.T) {
	out, err := ResolveConfig(nil, templateVars())
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestResolveConfig_UnresolvedInsideNested(t *testing.T) {
	cfg := map[string]any{
		"nested": map[string]any{"x": "{{settings.nope}}"},
	}
	_, err := ResolveConfig(cfg, templateVars())

	var unresolved *UnresolvedPathError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "settings.nope", unresolved.Path)
}
