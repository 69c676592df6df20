package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shipward/internal/release"
)

func newReleaseCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "release",
		Short: "Plan and run component release pipelines",
	}
	cmd.AddCommand(newReleasePlanCommand(app), newReleaseRunCommand(app))
	return cmd
}

func newReleasePlanCommand(app *App) *cobra.Command {
	var (
		jsonOut bool
		bump    string
		inputs  []string
	)
	cmd := &cobra.Command{
		Use:   "plan <component>",
		Short: "Validate a component's pipeline without executing it",
		Long: `Validate and normalize the component's release pipeline: check step ids
and dependencies, synthesize the commit step if needed, compute the
execution layering and verify every step type resolves to an action.
Nothing is executed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vals, err := parseInputs(bump, inputs)
			if err != nil {
				return app.fail(err)
			}
			report, err := app.Releaser.Plan(cmd.Context(), args[0], vals)
			if err != nil {
				return app.fail(err)
			}
			if err := app.printer(jsonOut).Report(report); err != nil {
				return app.fail(err)
			}
			if report.Result.Status == release.PipelineMissing {
				return NewExitError(2)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the report as JSON")
	cmd.Flags().StringVar(&bump, "bump", "", "bump the version before planning (major, minor or patch)")
	cmd.Flags().StringArrayVar(&inputs, "input", nil, "pipeline input as key=value (repeatable)")
	return cmd
}

func newReleaseRunCommand(app *App) *cobra.Command {
	var (
		jsonOut bool
		strict  bool
		bump    string
		inputs  []string
	)
	cmd := &cobra.Command{
		Use:   "run <component>",
		Short: "Execute a component's release pipeline",
		Long: `Execute the component's release pipeline. Steps whose dependencies all
succeeded run concurrently; a failure skips its dependents but never
interrupts steps already running. Core actions are idempotent, so
re-running after a partial success converges.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vals, err := parseInputs(bump, inputs)
			if err != nil {
				return app.fail(err)
			}
			report, err := app.Releaser.Run(cmd.Context(), args[0], vals, strict)
			if err != nil {
				return app.fail(err)
			}
			if err := app.printer(jsonOut).Report(report); err != nil {
				return app.fail(err)
			}
			switch report.Result.Status {
			case release.PipelineSuccess, release.PipelineSkipped:
				return nil
			default:
				return NewExitError(2)
			}
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the report as JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail before any step if the worktree is dirty")
	cmd.Flags().StringVar(&bump, "bump", "", "bump the version for this release (major, minor or patch)")
	cmd.Flags().StringArrayVar(&inputs, "input", nil, "pipeline input as key=value (repeatable)")
	return cmd
}

// parseInputs merges the --bump shorthand and the --input key=value pairs
// into the pipeline input map.
func parseInputs(bump string, pairs []string) (map[string]any, error) {
	inputs := make(map[string]any, len(pairs)+1)
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid input %q: expected key=value", pair)
		}
		inputs[key] = value
	}
	if bump != "" {
		inputs["bump"] = bump
	}
	return inputs, nil
}
