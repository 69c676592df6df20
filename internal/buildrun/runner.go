// Package buildrun executes component build commands and resolves the
// artifacts they produce.
//
// The [Runner] interface is consumed by the release pipeline's build step.
// [ExecRunner] spawns the configured command through the shell; [MockRunner]
// provides canned results for tests.
package buildrun

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"shipward/internal/logger"
)

// Result is the process-style outcome of a build command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Artifact describes one build output file.
type Artifact struct {
	Path     string `json:"path" yaml:"path"`
	Type     string `json:"type" yaml:"type"`
	Platform string `json:"platform,omitempty" yaml:"platform,omitempty"`
}

// ArtifactGlob pairs a glob pattern with the artifact metadata to attach
// to every file it matches.
type ArtifactGlob struct {
	Pattern  string `yaml:"pattern"`
	Type     string `yaml:"type"`
	Platform string `yaml:"platform,omitempty"`
}

// Runner executes build commands in a component's working directory.
type Runner interface {
	Run(ctx context.Context, dir, command string) (*Result, error)
}

// ExecRunner implements [Runner] via "sh -c" so build commands can use
// shell syntax (pipes, &&, env vars).
type ExecRunner struct {
	// Shell is the shell binary. Defaults to "sh".
	Shell string
}

// NewExecRunner creates an [ExecRunner] using sh from PATH.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Shell: "sh"}
}

// Run implements [Runner]. A non-zero exit status is not an error; it is
// reported through [Result.ExitCode] so the caller can decide.
func (r *ExecRunner) Run(ctx context.Context, dir, command string) (*Result, error) {
	shell := r.Shell
	if shell == "" {
		shell = "sh"
	}

	log := logger.GetLogger("build")
	log.Debug().Str("dir", dir).Str("command", command).Msg("running build command")

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return nil, fmt.Errorf("failed to run build command: %w", err)
		}
		result.ExitCode = exitErr.ExitCode()
	}
	return result, nil
}

// ResolveArtifacts expands artifact globs relative to dir into concrete
// [Artifact] descriptors. Patterns that match nothing contribute nothing;
// only malformed patterns error.
func ResolveArtifacts(dir string, globs []ArtifactGlob) ([]Artifact, error) {
	var artifacts []Artifact
	for _, g := range globs {
		matches, err := filepath.Glob(filepath.Join(dir, g.Pattern))
		if err != nil {
			return nil, fmt.Errorf("invalid artifact pattern %q: %w", g.Pattern, err)
		}
		for _, m := range matches {
			rel, err := filepath.Rel(dir, m)
			if err != nil {
				rel = m
			}
			artifacts = append(artifacts, Artifact{Path: rel, Type: g.Type, Platform: g.Platform})
		}
	}
	return artifacts, nil
}
