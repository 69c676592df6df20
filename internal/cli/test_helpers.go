package cli

import (
	"bytes"
	"context"
	"testing"

	"shipward/internal/config"
	"shipward/internal/release"
	"shipward/internal/store"
)

// MockReleaser is a mock for testing. It records calls and returns the
// configured report or error.
type MockReleaser struct {
	// Report is returned from Plan and Run when Err is nil.
	Report *release.Report

	// Err, when set, is returned from every call.
	Err error

	// PlanCalls and RunCalls record the component ids, in order.
	PlanCalls []string
	RunCalls  []string

	// LastInputs and LastStrict capture the most recent call's arguments.
	LastInputs map[string]any
	LastStrict bool
}

func (m *MockReleaser) Plan(ctx context.Context, componentID string, inputs map[string]any) (*release.Report, error) {
	m.PlanCalls = append(m.PlanCalls, componentID)
	m.LastInputs = inputs
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Report, nil
}

func (m *MockReleaser) Run(ctx context.Context, componentID string, inputs map[string]any, strict bool) (*release.Report, error) {
	m.RunCalls = append(m.RunCalls, componentID)
	m.LastInputs = inputs
	m.LastStrict = strict
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Report, nil
}

// testApp builds an App over a temp-dir store, a mock releaser and
// captured output buffers.
func testApp(t *testing.T, releaser *MockReleaser) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := &App{
		Config:   config.DefaultConfig(),
		Store:    store.New(t.TempDir()),
		Releaser: releaser,
		Stdout:   &stdout,
		Stderr:   &stderr,
	}
	return app, &stdout, &stderr
}

// execute runs the command tree with args and returns the exit code.
func execute(t *testing.T, app *App, args ...string) int {
	t.Helper()
	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(app.Stdout)
	root.SetErr(app.Stderr)
	if err := root.Execute(); err != nil {
		if code, ok := IsExitError(err); ok {
			return code
		}
		return 1
	}
	return 0
}

// successReport is a minimal all-green run report.
func successReport(componentID string) *release.Report {
	return &release.Report{
		ComponentID: componentID,
		RunID:       "run-1",
		Enabled:     true,
		Result: &release.Result{
			Status:  release.PipelineSuccess,
			Summary: release.Summary{TotalSteps: 1, Succeeded: 1},
			Steps:   []release.StepResult{{ID: "build", Type: "build", Status: release.StatusSuccess}},
		},
	}
}
