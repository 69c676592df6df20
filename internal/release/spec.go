// Package release implements shipward's release pipeline orchestrator.
//
// A release pipeline is a declarative, ordered set of steps (build, version
// bump, commit, tag, push, extension-provided actions) executed against one
// component's working directory. The package is organized around five
// pieces, leaves first:
//
//   - [BuildGraph] validates a step list into an acyclic [Graph] with
//     topological layers (graph.go)
//   - [ContextBuilder] resolves bindings, merges scoped settings and
//     computes the immutable release [Payload] (context.go)
//   - [Dispatcher] maps a step type to a core or extension [Action] and
//     normalizes its [Outcome] (dispatch.go, actions.go)
//   - [Scheduler] runs ready steps concurrently round by round, propagating
//     skips and failures (scheduler.go)
//   - [Aggregate] reduces step results into a pipeline [Result] (result.go)
//
// [Service] wires the pieces together behind the plan and run operations
// the CLI exposes.
package release

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the per-component pipeline configuration file, relative to
// the component's working directory.
const ConfigFile = "release.yaml"

// ErrNoReleaseConfig indicates a component has no release configuration.
var ErrNoReleaseConfig = errors.New("no release configuration")

// StepSpec is one declared pipeline step. StepSpecs are immutable once the
// graph is built; every plan and run rebuilds them from configuration.
type StepSpec struct {
	// ID is the step identifier, unique within the pipeline.
	ID string `yaml:"id" json:"id"`

	// Type names a core action (build, changes, version, git.commit,
	// git.tag, git.push, module.run) or an extension action resolved as
	// "release.<type>".
	Type string `yaml:"type" json:"type"`

	// Needs lists step ids that must succeed before this step runs.
	Needs []string `yaml:"needs,omitempty" json:"needs,omitempty"`

	// Config is the step's open configuration map. String values may use
	// {{dotted.path}} placeholders resolved against the execution context.
	Config map[string]any `yaml:"config,omitempty" json:"config,omitempty"`

	// Label is an optional display string.
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

// Config is a component's release pipeline configuration.
type Config struct {
	// Enabled turns the pipeline off without deleting it. Nil means enabled.
	Enabled *bool `yaml:"enabled,omitempty"`

	// Steps is the declared step list, in declaration order.
	Steps []StepSpec `yaml:"steps"`
}

// IsEnabled reports whether the pipeline should execute.
func (c *Config) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// LoadConfig reads the release configuration from the component working
// directory dir. A missing file is [ErrNoReleaseConfig] with guidance on
// how to add one.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w for %s: create %s with a steps list to define the pipeline",
				ErrNoReleaseConfig, dir, path)
		}
		return nil, fmt.Errorf("failed to read release configuration: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}
