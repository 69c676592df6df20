package release

import (
	"github.com/samber/lo"
)

// Status is a per-step state. ready and running are transient; success,
// failed, skipped and missing are terminal. A step's result is written
// exactly once, when it reaches a terminal state.
type Status string

const (
	StatusReady   Status = "ready"
	StatusRunning Status = "running"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusMissing Status = "missing"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusSkipped, StatusMissing:
		return true
	}
	return false
}

// PipelineStatus is the aggregate status over all steps of one run.
type PipelineStatus string

const (
	PipelineSuccess PipelineStatus = "success"
	PipelinePartial PipelineStatus = "partial_success"
	PipelineFailed  PipelineStatus = "failed"
	PipelineSkipped PipelineStatus = "skipped"
	PipelineMissing PipelineStatus = "missing"
)

// StepResult is the terminal outcome of one step.
type StepResult struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Status   Status         `json:"status"`
	Data     map[string]any `json:"data,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
	Hints    []string       `json:"hints,omitempty"`

	// Missing lists unmet requirements when Status is missing: an action
	// type nothing provides, or a template path with no value.
	Missing []string `json:"missing,omitempty"`
}

// Summary holds step counts and suggested follow-ups.
type Summary struct {
	TotalSteps  int      `json:"total_steps"`
	Succeeded   int      `json:"succeeded"`
	Failed      int      `json:"failed"`
	Skipped     int      `json:"skipped"`
	Missing     int      `json:"missing"`
	NextActions []string `json:"next_actions,omitempty"`
}

// Result is the pipeline-level report over all step results.
type Result struct {
	Status   PipelineStatus `json:"status"`
	Warnings []string       `json:"warnings,omitempty"`
	Summary  Summary        `json:"summary"`
	Steps    []StepResult   `json:"steps"`
}

// Report is the payload returned by the plan and run operations.
type Report struct {
	ComponentID string  `json:"component_id"`
	RunID       string  `json:"run_id,omitempty"`
	Enabled     bool    `json:"enabled"`
	Result      *Result `json:"result"`

	// Layers is the computed execution layering, included by plan so the
	// discovered parallelism is visible without running anything.
	Layers [][]string `json:"layers,omitempty"`
}

// Aggregate reduces step results to a pipeline [Result].
//
// Status precedence: every step success means success; any mixture of
// successes with failures, skips or missing actions means partial_success
// (the safe-retry signal); with no successes, failures dominate missing,
// which dominates skipped; an empty pipeline is skipped.
func Aggregate(steps []StepResult, warnings []string) *Result {
	counts := lo.CountValuesBy(steps, func(r StepResult) Status { return r.Status })

	summary := Summary{
		TotalSteps: len(steps),
		Succeeded:  counts[StatusSuccess],
		Failed:     counts[StatusFailed],
		Skipped:    counts[StatusSkipped],
		Missing:    counts[StatusMissing],
	}

	var status PipelineStatus
	switch {
	case summary.TotalSteps == 0:
		status = PipelineSkipped
	case summary.Succeeded == summary.TotalSteps:
		status = PipelineSuccess
	case summary.Succeeded > 0:
		status = PipelinePartial
	case summary.Failed > 0:
		status = PipelineFailed
	case summary.Missing > 0:
		status = PipelineMissing
	default:
		status = PipelineSkipped
	}

	summary.NextActions = nextActions(status, summary)

	return &Result{
		Status:   status,
		Warnings: warnings,
		Summary:  summary,
		Steps:    steps,
	}
}

// nextActions suggests what the user should do after this run. Idempotent
// core actions make re-running after partial_success converge, so retry is
// always the first suggestion when some steps succeeded.
func nextActions(status PipelineStatus, s Summary) []string {
	var actions []string
	switch status {
	case PipelinePartial:
		actions = append(actions, "re-run the pipeline: completed steps detect their prior success and the run converges")
	case PipelineFailed:
		actions = append(actions, "inspect the failed step output, fix the cause, then re-run the pipeline")
	case PipelineMissing:
		actions = append(actions, "install or attach an extension providing the missing action types, then re-run")
	}
	if status == PipelinePartial && s.Missing > 0 {
		actions = append(actions, "some step types resolved to no action; check component extensions")
	}
	return actions
}
