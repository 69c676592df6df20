package release

import (
	"context"
	"fmt"
	"sync"
	"time"

	"shipward/internal/store"
)

// memVersions is an in-memory VersionStore for tests.
type memVersions struct {
	mu       sync.Mutex
	versions map[string]string
	writes   []string
}

func newMemVersions(path, version string) *memVersions {
	return &memVersions{versions: map[string]string{path: version}}
}

func (m *memVersions) Read(path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.versions[path]
	if !ok {
		return "", fmt.Errorf("failed to read version file: %s", path)
	}
	return v, nil
}

func (m *memVersions) Write(path, version string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[path] = version
	m.writes = append(m.writes, version)
	return nil
}

// stubNotes is a canned NotesSource.
type stubNotes struct {
	notes string
	err   error
}

func (s *stubNotes) Unreleased(path string) (string, error) {
	return s.notes, s.err
}

// fakeDispatcher is a StepDispatcher returning canned results per step id.
// It records dispatch order and the peak number of concurrently running
// dispatches so tests can assert on parallelism.
type fakeDispatcher struct {
	mu sync.Mutex

	// results maps step id to the result to return. Steps without an
	// entry succeed.
	results map[string]StepResult

	// delay holds every dispatch long enough for round-mates to overlap.
	delay time.Duration

	started    []string
	running    int
	maxRunning int
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, rc *Context, step StepSpec) StepResult {
	f.mu.Lock()
	f.started = append(f.started, step.ID)
	f.running++
	if f.running > f.maxRunning {
		f.maxRunning = f.running
	}
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.running--
	res, ok := f.results[step.ID]
	f.mu.Unlock()

	if !ok {
		res = StepResult{Status: StatusSuccess}
	}
	res.ID = step.ID
	res.Type = step.Type
	return res
}

// testComponent returns a component record pointing at dir.
func testComponent(dir string) *store.Component {
	return &store.Component{
		ID:          "api",
		Path:        dir,
		VersionFile: "VERSION",
		Changelog:   "CHANGELOG.md",
	}
}

// testContext builds an execution context without going through the store.
func testContext(dir string) *Context {
	component := testComponent(dir)
	return &Context{
		RunID:     "test-run",
		Component: component,
		Settings:  map[string]any{"remote": "origin"},
		Inputs:    map[string]any{},
		Payload: Payload{
			Version:     "1.4.0",
			Tag:         "v1.4.0",
			Notes:       "### Added\n- things",
			ComponentID: component.ID,
			LocalPath:   dir,
		},
	}
}
