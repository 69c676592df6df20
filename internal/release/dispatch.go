package release

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"shipward/internal/buildrun"
	"shipward/internal/extension"
	"shipward/internal/gitops"
	"shipward/internal/logger"
)

// Outcome is a normalized action result. Success/failure drives the step's
// terminal status; a non-empty Missing list marks the step missing instead
// (an unmet requirement, not an execution failure).
type Outcome struct {
	Success  bool
	Data     map[string]any
	Warnings []string
	Hints    []string
	Missing  []string
}

// Action is one invocable step implementation: a built-in core action or
// an externally resolved extension action, behind the same single-capability
// interface. cfg is the step's config with templates already resolved.
type Action interface {
	Invoke(ctx context.Context, rc *Context, step StepSpec, cfg map[string]any) (*Outcome, error)
}

// extensionActionPrefix namespaces extension-provided release actions.
const extensionActionPrefix = "release."

// Collaborators are the external interfaces the core actions execute
// against. All of them are swappable for tests.
type Collaborators struct {
	Git       gitops.Git
	Builder   buildrun.Runner
	Versions  VersionStore
	Notes     NotesSource
	Registry  *extension.Registry
	ExtRunner extension.Runner
}

// VersionStore reads and writes component version state.
type VersionStore interface {
	VersionSource
	Write(path, version string) error
}

// Dispatcher resolves step types to actions and executes them.
//
// Resolution order: the fixed core set first, then an extension action
// named "release.<type>" among the extensions attached to the component.
// A type neither resolves is a missing step; execution is never attempted.
type Dispatcher struct {
	core      map[string]Action
	registry  *extension.Registry
	extRunner extension.Runner
	log       zerolog.Logger
}

// NewDispatcher builds a [Dispatcher] with the core action set wired to
// the given collaborators.
func NewDispatcher(c Collaborators) *Dispatcher {
	return &Dispatcher{
		core: map[string]Action{
			"build":      &buildAction{runner: c.Builder},
			"changes":    &changesAction{},
			"version":    &versionAction{versions: c.Versions},
			"git.commit": &gitCommitAction{git: c.Git},
			"git.tag":    &gitTagAction{git: c.Git},
			"git.push":   &gitPushAction{git: c.Git},
			"module.run": &moduleRunAction{registry: c.Registry, runner: c.ExtRunner},
		},
		registry:  c.Registry,
		extRunner: c.ExtRunner,
		log:       logger.GetReleaseLogger(),
	}
}

// Resolve maps a step type to an action. attached lists the component's
// extensions, in resolution order.
func (d *Dispatcher) Resolve(stepType string, attached []string) (Action, bool) {
	if action, ok := d.core[stepType]; ok {
		return action, true
	}
	if d.registry == nil {
		return nil, false
	}
	ext, ok := d.registry.ResolveAction(extensionActionPrefix+stepType, attached)
	if !ok {
		return nil, false
	}
	return &extensionAction{ext: ext, runner: d.extRunner}, true
}

// Dispatch resolves and executes one step, returning its terminal result.
// Dispatch never returns a non-terminal status and never panics the run:
// resolution failures map to missing, execution errors to failed.
func (d *Dispatcher) Dispatch(ctx context.Context, rc *Context, step StepSpec) StepResult {
	result := StepResult{ID: step.ID, Type: step.Type}

	action, ok := d.Resolve(step.Type, rc.Component.Extensions)
	if !ok {
		d.log.Debug().Str("step", step.ID).Str("type", step.Type).Msg("no action resolves step type")
		result.Status = StatusMissing
		result.Missing = []string{fmt.Sprintf("no core or extension action for type %q", step.Type)}
		return result
	}

	cfg, err := ResolveConfig(step.Config, rc.Vars())
	if err != nil {
		var unresolved *UnresolvedPathError
		if errors.As(err, &unresolved) {
			result.Status = StatusMissing
			result.Missing = []string{unresolved.Path}
			result.Warnings = []string{err.Error()}
			return result
		}
		result.Status = StatusFailed
		result.Warnings = []string{err.Error()}
		return result
	}

	d.log.Debug().Str("step", step.ID).Str("type", step.Type).Msg("dispatching step")
	outcome, err := action.Invoke(ctx, rc, step, cfg)
	if err != nil {
		var unresolved *UnresolvedPathError
		if errors.As(err, &unresolved) {
			result.Status = StatusMissing
			result.Missing = []string{unresolved.Path}
			result.Warnings = []string{err.Error()}
			return result
		}
		result.Status = StatusFailed
		result.Warnings = []string{err.Error()}
		return result
	}

	result.Data = outcome.Data
	result.Warnings = outcome.Warnings
	result.Hints = outcome.Hints
	switch {
	case len(outcome.Missing) > 0:
		result.Status = StatusMissing
		result.Missing = outcome.Missing
	case outcome.Success:
		result.Status = StatusSuccess
	default:
		result.Status = StatusFailed
	}
	return result
}

// extensionAction adapts an installed extension to [Action]. The shared
// action payload (release payload plus the step's resolved config) goes to
// the runtime as JSON on stdin.
type extensionAction struct {
	ext    *extension.Extension
	runner extension.Runner
}

func (a *extensionAction) Invoke(ctx context.Context, rc *Context, step StepSpec, cfg map[string]any) (*Outcome, error) {
	payload, err := actionPayload(rc, cfg)
	if err != nil {
		return nil, err
	}
	out, err := a.runner.Invoke(ctx, a.ext, rc.Payload.LocalPath, payload)
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Success:  out.Success,
		Data:     out.Data,
		Warnings: out.Warnings,
		Hints:    out.Hints,
	}, nil
}

// actionPayload encodes the shared payload every external action receives.
func actionPayload(rc *Context, cfg map[string]any) ([]byte, error) {
	payload := map[string]any{"release": rc.Payload}
	if len(cfg) > 0 {
		payload["config"] = cfg
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode action payload: %w", err)
	}
	return data, nil
}
