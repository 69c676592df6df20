package release

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

// Configuration errors detected while building the pipeline graph. These
// fail plan and run before any step executes and are never retried.
var (
	// ErrDuplicateStepID indicates two steps share an id.
	ErrDuplicateStepID = errors.New("duplicate step id")

	// ErrUnknownDependency indicates a needs entry references no step.
	ErrUnknownDependency = errors.New("unknown dependency")

	// ErrDependencyCycle indicates the needs relation contains a cycle.
	ErrDependencyCycle = errors.New("dependency cycle")
)

// Step types with built-in graph treatment.
const (
	typeGitCommit = "git.commit"
	typeGitTag    = "git.tag"
	typeVersion   = "version"
	typeChanges   = "changes"
)

// autoCommitID is the id given to a synthesized git.commit step.
const autoCommitID = "commit"

// Graph is a validated, layered pipeline. Steps holds the normalized step
// list in declaration order (auto-inserted steps included); Layers holds
// step ids grouped by topological layer, preserving declaration order
// within each layer so plans are deterministic.
type Graph struct {
	Steps  []StepSpec
	Layers [][]string

	index map[string]int
}

// GraphOptions tunes structural normalization.
type GraphOptions struct {
	// CommitMessage is the message configured on a synthesized git.commit
	// step. Placeholders are resolved at dispatch time.
	CommitMessage string
}

// BuildGraph validates and normalizes a declared step list into a [Graph].
//
// Validation rejects duplicate ids, needs entries that reference no step,
// and cycles. Normalization synthesizes a git.commit step when the
// pipeline tags without committing, so version and changelog edits are
// always committed before tagging.
func BuildGraph(declared []StepSpec, opts GraphOptions) (*Graph, error) {
	steps := append([]StepSpec(nil), declared...)

	index := make(map[string]int, len(steps))
	for i, s := range steps {
		if s.ID == "" {
			return nil, fmt.Errorf("step %d has no id", i)
		}
		if _, dup := index[s.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateStepID, s.ID)
		}
		index[s.ID] = i
	}

	for _, s := range steps {
		for _, dep := range s.Needs {
			if _, ok := index[dep]; !ok {
				return nil, fmt.Errorf("%w: step %s needs %q, which is not defined", ErrUnknownDependency, s.ID, dep)
			}
		}
	}

	steps, index = autoInsertCommit(steps, index, opts.CommitMessage)

	g := &Graph{Steps: steps, index: index}
	if err := g.detectCycle(); err != nil {
		return nil, err
	}
	g.layer()
	return g, nil
}

// autoInsertCommit synthesizes a git.commit step when at least one git.tag
// step exists and no git.commit step does. Every tag step gains a needs edge
// to the synthesized step, and the synthesized step itself needs the
// pipeline's worktree-mutating steps (version, changes) so a tag can never
// capture an uncommitted version bump. Mutating steps that transitively
// depend on a tag step are left out of those edges; wiring them in would
// close a cycle. The new step is inserted immediately before the first tag
// step to keep declaration order meaningful.
func autoInsertCommit(steps []StepSpec, index map[string]int, message string) ([]StepSpec, map[string]int) {
	hasTag := lo.SomeBy(steps, func(s StepSpec) bool { return s.Type == typeGitTag })
	hasCommit := lo.SomeBy(steps, func(s StepSpec) bool { return s.Type == typeGitCommit })
	if !hasTag || hasCommit {
		return steps, index
	}

	commitID := autoCommitID
	for n := 2; ; n++ {
		if _, taken := index[commitID]; !taken {
			break
		}
		commitID = fmt.Sprintf("%s-%d", autoCommitID, n)
	}

	commit := StepSpec{
		ID:    commitID,
		Type:  typeGitCommit,
		Label: "Commit release changes",
		Needs: lo.FilterMap(steps, func(s StepSpec, _ int) (string, bool) {
			if s.Type != typeVersion && s.Type != typeChanges {
				return "", false
			}
			return s.ID, !dependsOnType(steps, index, s.ID, typeGitTag)
		}),
	}
	if message != "" {
		commit.Config = map[string]any{"message": message}
	}

	firstTag := lo.IndexOf(lo.Map(steps, func(s StepSpec, _ int) string { return s.Type }), typeGitTag)
	out := make([]StepSpec, 0, len(steps)+1)
	out = append(out, steps[:firstTag]...)
	out = append(out, commit)
	out = append(out, steps[firstTag:]...)

	newIndex := make(map[string]int, len(out))
	for i, s := range out {
		newIndex[s.ID] = i
	}

	// No git.commit exists anywhere, so every tag step needs the new edge.
	for i := range out {
		if out[i].Type == typeGitTag {
			out[i].Needs = append(append([]string(nil), out[i].Needs...), commitID)
		}
	}
	return out, newIndex
}

// dependsOnType reports whether the step with id start transitively needs
// any step of the given type.
func dependsOnType(steps []StepSpec, index map[string]int, start, typ string) bool {
	seen := make(map[string]bool, len(steps))
	var walk func(id string) bool
	walk = func(id string) bool {
		if seen[id] {
			return false
		}
		seen[id] = true
		for _, dep := range steps[index[id]].Needs {
			if steps[index[dep]].Type == typ || walk(dep) {
				return true
			}
		}
		return false
	}
	return walk(start)
}

// detectCycle runs a depth-first traversal over the needs relation with a
// recursion-stack marker.
func (g *Graph) detectCycle() error {
	const (
		unvisited = iota
		inStack
		done
	)
	state := make([]int, len(g.Steps))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case inStack:
			return fmt.Errorf("%w involving step %q", ErrDependencyCycle, g.Steps[i].ID)
		}
		state[i] = inStack
		for _, dep := range g.Steps[i].Needs {
			if err := visit(g.index[dep]); err != nil {
				return err
			}
		}
		state[i] = done
		return nil
	}

	for i := range g.Steps {
		if err := visit(i); err != nil {
			return err
		}
	}
	return nil
}

// layer computes topological layers: layer 0 holds steps with no needs,
// layer k holds steps whose needs all sit in layers 0..k-1. Layering only
// exists to expose parallelism; within a layer, declaration order is kept.
func (g *Graph) layer() {
	placed := make(map[string]bool, len(g.Steps))
	remaining := len(g.Steps)

	for remaining > 0 {
		layer := lo.FilterMap(g.Steps, func(s StepSpec, _ int) (string, bool) {
			if placed[s.ID] {
				return "", false
			}
			ready := lo.EveryBy(s.Needs, func(dep string) bool { return placed[dep] })
			return s.ID, ready
		})
		if len(layer) == 0 {
			// Unreachable after detectCycle, but never loop forever.
			return
		}
		for _, id := range layer {
			placed[id] = true
		}
		remaining -= len(layer)
		g.Layers = append(g.Layers, layer)
	}
}

// Step returns the step with the given id.
func (g *Graph) Step(id string) (StepSpec, bool) {
	i, ok := g.index[id]
	if !ok {
		return StepSpec{}, false
	}
	return g.Steps[i], true
}

// IndexOf returns the position of a step id in [Graph.Steps].
func (g *Graph) IndexOf(id string) (int, bool) {
	i, ok := g.index[id]
	return i, ok
}
