package extension

import (
	"context"
	"sync"
)

// MockRunner is a canned [Runner] for tests. It records invocations and
// returns per-extension outcomes from the Outcomes map, falling back to
// Default.
type MockRunner struct {
	mu sync.Mutex

	// Outcomes maps extension name to the outcome to return.
	Outcomes map[string]*Outcome

	// Default is returned when Outcomes has no entry. Nil means success.
	Default *Outcome

	// Err, when set, is returned from every invocation.
	Err error

	// Invocations records (extension name, payload) pairs in call order.
	Invocations []MockInvocation
}

// MockInvocation is one recorded [MockRunner] call.
type MockInvocation struct {
	Extension string
	Dir       string
	Payload   []byte
}

// Invoke implements [Runner].
func (m *MockRunner) Invoke(ctx context.Context, ext *Extension, dir string, payload []byte) (*Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invocations = append(m.Invocations, MockInvocation{Extension: ext.Name, Dir: dir, Payload: payload})
	if m.Err != nil {
		return nil, m.Err
	}
	if o, ok := m.Outcomes[ext.Name]; ok {
		return o, nil
	}
	if m.Default != nil {
		return m.Default, nil
	}
	return &Outcome{Success: true}, nil
}
