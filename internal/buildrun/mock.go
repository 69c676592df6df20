package buildrun

import (
	"context"
	"sync"
)

// MockRunner is a canned [Runner] for tests. It records every command it
// receives and returns the configured result.
type MockRunner struct {
	mu sync.Mutex

	// Result is returned from every Run call. Defaults to exit 0.
	Result Result

	// Err, when set, is returned instead of a result.
	Err error

	// Commands records the commands passed to Run, in call order.
	Commands []string
}

// Run implements [Runner].
func (m *MockRunner) Run(ctx context.Context, dir, command string) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Commands = append(m.Commands, command)
	if m.Err != nil {
		return nil, m.Err
	}
	out := m.Result
	return &out, nil
}
