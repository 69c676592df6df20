package release

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"shipward/internal/logger"
)

// StepDispatcher executes one step to a terminal result. [Dispatcher]
// implements it; tests substitute their own.
type StepDispatcher interface {
	Dispatch(ctx context.Context, rc *Context, step StepSpec) StepResult
}

// Scheduler drives a pipeline graph to completion.
//
// Execution is round based: each round collects the steps whose
// dependencies are all terminal, marks the ones with a non-success
// dependency skipped without dispatching them, and runs the rest
// concurrently, one goroutine per step, joined by a barrier before the
// next round. A step therefore never starts while any dependency could
// still be running, and a failure never cancels an already started,
// independent step in the same round.
type Scheduler struct {
	dispatcher StepDispatcher
	log        zerolog.Logger
}

// NewScheduler creates a [Scheduler] dispatching through d.
func NewScheduler(d StepDispatcher) *Scheduler {
	return &Scheduler{dispatcher: d, log: logger.GetReleaseLogger()}
}

// Run executes every step of the graph and returns the results in
// declaration order.
//
// The result table is index addressed and written exactly once per step:
// each step id is dispatched at most once, and the table slot is assigned
// only when the step reaches a terminal state. Writes from concurrent
// steps are serialized by a mutex.
func (s *Scheduler) Run(ctx context.Context, g *Graph, rc *Context) []StepResult {
	n := len(g.Steps)
	results := make([]StepResult, n)
	state := make([]Status, n)
	for i := range state {
		state[i] = StatusReady
	}

	round := 0
	for {
		toRun, skippedAny := s.advance(g, state, results)
		if len(toRun) == 0 {
			if !skippedAny {
				break
			}
			// Newly skipped steps may make further dependents decidable.
			continue
		}

		round++
		s.log.Debug().Int("round", round).Int("steps", len(toRun)).Str("run_id", rc.RunID).Msg("dispatching round")

		var (
			wg sync.WaitGroup
			mu sync.Mutex
		)
		for _, i := range toRun {
			state[i] = StatusRunning
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				res := s.dispatcher.Dispatch(ctx, rc, g.Steps[i])
				if !res.Status.Terminal() {
					res.Status = StatusFailed
					res.Warnings = append(res.Warnings, "step finished without a terminal status")
				}
				mu.Lock()
				results[i] = res
				state[i] = res.Status
				mu.Unlock()
			}(i)
		}
		wg.Wait()
	}

	return results
}

// advance resolves readiness for every still-ready step: steps whose
// dependencies are all terminal and all successful are returned for
// dispatch; steps with a terminal non-success dependency are skipped in
// place. Steps with a still-pending dependency stay ready.
func (s *Scheduler) advance(g *Graph, state []Status, results []StepResult) (toRun []int, skippedAny bool) {
	for i, step := range g.Steps {
		if state[i] != StatusReady {
			continue
		}

		allTerminal := true
		blockedBy := ""
		for _, dep := range step.Needs {
			j, _ := g.IndexOf(dep)
			if !state[j].Terminal() {
				allTerminal = false
				break
			}
			if state[j] != StatusSuccess && blockedBy == "" {
				blockedBy = dep
			}
		}
		if !allTerminal {
			continue
		}

		if blockedBy != "" {
			results[i] = StepResult{
				ID:     step.ID,
				Type:   step.Type,
				Status: StatusSkipped,
				Hints:  []string{fmt.Sprintf("skipped because dependency %q did not succeed", blockedBy)},
			}
			state[i] = StatusSkipped
			skippedAny = true
			continue
		}
		toRun = append(toRun, i)
	}
	return toRun, skippedAny
}
