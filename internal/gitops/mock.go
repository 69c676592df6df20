package gitops

import (
	"context"
	"sync"
)

// MockGit is an in-memory [Git] implementation for tests.
//
// Fields configure the state the mock reports; the Commits, Tags and Pushes
// slices record every mutation in call order. MockGit is safe for use from
// concurrent pipeline steps.
type MockGit struct {
	mu sync.Mutex

	// Clean is what IsClean reports.
	Clean bool

	// ExistingTags are tags TagExists reports as present before the run.
	ExistingTags []string

	// Err, when set, is returned by every mutating operation.
	Err error

	// Recorded calls.
	Commits []string
	Tags    []string
	Pushes  []string
}

// IsClean implements [Git].
func (m *MockGit) IsClean(ctx context.Context, dir string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Clean, nil
}

// Commit implements [Git].
func (m *MockGit) Commit(ctx context.Context, dir, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Commits = append(m.Commits, message)
	m.Clean = true
	return nil
}

// Tag implements [Git].
func (m *MockGit) Tag(ctx context.Context, dir, name, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Tags = append(m.Tags, name)
	return nil
}

// TagExists implements [Git].
func (m *MockGit) TagExists(ctx context.Context, dir, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range append(m.ExistingTags, m.Tags...) {
		if t == name {
			return true, nil
		}
	}
	return false, nil
}

// Push implements [Git].
func (m *MockGit) Push(ctx context.Context, dir, remote string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Pushes = append(m.Pushes, remote)
	return nil
}
