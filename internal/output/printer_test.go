package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipward/internal/release"
	"shipward/internal/store"
)

func sampleReport() *release.Report {
	return &release.Report{
		ComponentID: "api",
		RunID:       "run-1",
		Enabled:     true,
		Layers:      [][]string{{"build", "version"}, {"tag"}},
		Result: &release.Result{
			Status:   release.PipelinePartial,
			Warnings: []string{"no unreleased changelog entries"},
			Summary: release.Summary{
				TotalSteps:  3,
				Succeeded:   2,
				Failed:      1,
				NextActions: []string{"re-run the pipeline: completed steps detect their prior success and the run converges"},
			},
			Steps: []release.StepResult{
				{ID: "build", Type: "build", Status: release.StatusSuccess},
				{ID: "version", Type: "version", Status: release.StatusSuccess, Hints: []string{"version already at 1.4.0"}},
				{ID: "tag", Type: "git.tag", Status: release.StatusFailed, Warnings: []string{"remote rejected"}},
			},
		},
	}
}

func TestPrinter_ReportText(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinterWithWriter(&buf, false)

	require.NoError(t, p.Report(sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "api")
	assert.Contains(t, out, "partial_success")
	assert.Contains(t, out, "build, version")
	assert.Contains(t, out, "version already at 1.4.0")
	assert.Contains(t, out, "remote rejected")
	assert.Contains(t, out, "3 steps")
	assert.Contains(t, out, "re-run the pipeline")
}

func TestPrinter_ReportJSON(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinterWithWriter(&buf, true)

	require.NoError(t, p.Report(sampleReport()))

	var decoded release.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "api", decoded.ComponentID)
	assert.Equal(t, release.PipelinePartial, decoded.Result.Status)
	assert.Len(t, decoded.Result.Steps, 3)
}

func TestPrinter_ProjectsEmpty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinterWithWriter(&buf, false)

	require.NoError(t, p.Projects(nil))
	assert.Contains(t, buf.String(), "no projects")
}

func TestPrinter_ComponentsText(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinterWithWriter(&buf, false)

	require.NoError(t, p.Components([]store.Component{
		{ID: "api", Path: "services/api", Project: "platform"},
		{ID: "worker", Path: "services/worker"},
	}))
	out := buf.String()

	assert.Contains(t, out, "api")
	assert.Contains(t, out, "services/api")
	assert.Contains(t, out, "project=platform")
	assert.Contains(t, out, "worker")
}

func TestPrinter_ServersJSON(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinterWithWriter(&buf, true)

	require.NoError(t, p.Servers([]store.Server{{ID: "web-1", Host: "10.0.0.5", Port: 22, Roles: []string{"web"}}}))

	var decoded []store.Server
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "web-1", decoded[0].ID)
}
