package release

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shipward/internal/buildrun"
	"shipward/internal/changelog"
	"shipward/internal/config"
	"shipward/internal/extension"
	"shipward/internal/gitops"
	"shipward/internal/logger"
	"shipward/internal/semver"
	"shipward/internal/store"
)

// ErrDirtyWorkTree is the strict-mode preflight failure: the component's
// worktree has uncommitted changes before any step ran.
var ErrDirtyWorkTree = errors.New("working tree has uncommitted changes")

// Service exposes the plan and run operations over one component's release
// pipeline. Construct it once per CLI invocation; it holds no cross-run
// state.
type Service struct {
	cfg           *config.Config
	store         *store.Store
	collaborators Collaborators
	log           zerolog.Logger
}

// NewService creates a [Service] over the given record store and
// collaborators.
func NewService(cfg *config.Config, st *store.Store, c Collaborators) *Service {
	return &Service{
		cfg:           cfg,
		store:         st,
		collaborators: c,
		log:           logger.GetReleaseLogger(),
	}
}

// DefaultCollaborators returns production collaborators: git, sh, the
// version file manager, the changelog reader and the extensions discovered
// under the workspace.
func DefaultCollaborators(cfg *config.Config) (Collaborators, error) {
	registry, err := extension.Discover(cfg.ExtensionsDir())
	if err != nil {
		return Collaborators{}, err
	}
	return Collaborators{
		Git:       gitops.NewExecGit(),
		Builder:   buildrun.NewExecRunner(),
		Versions:  semver.NewManager(),
		Notes:     changelog.NewReader(),
		Registry:  registry,
		ExtRunner: extension.NewExecRunner(),
	}, nil
}

// prepared bundles everything one plan or run needs.
type prepared struct {
	graph   *Graph
	rc      *Context
	enabled bool
}

func (s *Service) prepare(componentID string, inputs map[string]any) (*prepared, error) {
	component, err := s.store.Component(componentID)
	if err != nil {
		return nil, err
	}

	relCfg, err := LoadConfig(component.Path)
	if err != nil {
		return nil, err
	}

	graph, err := BuildGraph(relCfg.Steps, GraphOptions{CommitMessage: s.cfg.Release.CommitMessage})
	if err != nil {
		return nil, fmt.Errorf("invalid release pipeline for %s: %w", componentID, err)
	}

	builder := &ContextBuilder{
		Store:     s.store,
		Versions:  s.collaborators.Versions,
		Notes:     notesSource(s.collaborators),
		Defaults:  s.cfg.Release.Defaults,
		TagPrefix: s.cfg.Release.TagPrefix,
	}
	rc, err := builder.Build(componentID, inputs)
	if err != nil {
		return nil, err
	}
	rc.RunID = uuid.NewString()

	return &prepared{graph: graph, rc: rc, enabled: relCfg.IsEnabled()}, nil
}

// Plan validates and normalizes the pipeline and reports, per step,
// whether its type resolves to an action — without executing anything.
func (s *Service) Plan(ctx context.Context, componentID string, inputs map[string]any) (*Report, error) {
	p, err := s.prepare(componentID, inputs)
	if err != nil {
		return nil, err
	}
	if !p.enabled {
		return disabledReport(componentID), nil
	}

	dispatcher := NewDispatcher(s.collaborators)
	steps := make([]StepResult, 0, len(p.graph.Steps))
	missing := 0
	for _, step := range p.graph.Steps {
		sr := StepResult{ID: step.ID, Type: step.Type, Status: StatusReady}
		if _, ok := dispatcher.Resolve(step.Type, p.rc.Component.Extensions); !ok {
			sr.Status = StatusMissing
			sr.Missing = []string{fmt.Sprintf("no core or extension action for type %q", step.Type)}
			missing++
		}
		steps = append(steps, sr)
	}

	status := PipelineSuccess
	var next []string
	if missing > 0 {
		status = PipelineMissing
		next = []string{"install or attach an extension providing the missing action types before running"}
	}

	return &Report{
		ComponentID: componentID,
		RunID:       p.rc.RunID,
		Enabled:     true,
		Layers:      p.graph.Layers,
		Result: &Result{
			Status:   status,
			Warnings: p.rc.Warnings,
			Summary: Summary{
				TotalSteps:  len(steps),
				Missing:     missing,
				NextActions: next,
			},
			Steps: steps,
		},
	}, nil
}

// Run executes the full pipeline. strict enables the dirty-worktree
// preflight in addition to the config default.
func (s *Service) Run(ctx context.Context, componentID string, inputs map[string]any, strict bool) (*Report, error) {
	p, err := s.prepare(componentID, inputs)
	if err != nil {
		return nil, err
	}
	if !p.enabled {
		return disabledReport(componentID), nil
	}

	if strict || s.cfg.Release.Strict {
		clean, err := s.collaborators.Git.IsClean(ctx, p.rc.Payload.LocalPath)
		if err != nil {
			return nil, fmt.Errorf("preflight failed: %w", err)
		}
		if !clean {
			return nil, fmt.Errorf("%w in %s: commit or stash them, or run without --strict",
				ErrDirtyWorkTree, p.rc.Payload.LocalPath)
		}
	}

	s.log.Info().Str("component", componentID).Str("run_id", p.rc.RunID).
		Int("steps", len(p.graph.Steps)).Msg("running release pipeline")

	scheduler := NewScheduler(NewDispatcher(s.collaborators))
	results := scheduler.Run(ctx, p.graph, p.rc)

	report := &Report{
		ComponentID: componentID,
		RunID:       p.rc.RunID,
		Enabled:     true,
		Result:      Aggregate(results, p.rc.Warnings),
	}
	s.log.Info().Str("component", componentID).Str("status", string(report.Result.Status)).Msg("pipeline finished")
	return report, nil
}

func disabledReport(componentID string) *Report {
	return &Report{
		ComponentID: componentID,
		Enabled:     false,
		Result: &Result{
			Status:   PipelineSkipped,
			Warnings: []string{"release pipeline is disabled for this component"},
		},
	}
}

func notesSource(c Collaborators) NotesSource {
	if c.Notes != nil {
		return c.Notes
	}
	return changelog.NewReader()
}
