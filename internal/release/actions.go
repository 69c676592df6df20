package release

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"shipward/internal/buildrun"
	"shipward/internal/extension"
	"shipward/internal/gitops"
)

// decodeParams decodes a resolved step config map into a typed params
// struct. Unknown keys are allowed; steps may carry extra configuration for
// template lookups.
func decodeParams(cfg map[string]any, out any) error {
	if cfg == nil {
		return nil
	}
	if err := mapstructure.Decode(cfg, out); err != nil {
		return fmt.Errorf("invalid step config: %w", err)
	}
	return nil
}

// stepSetting implements the per-step scope of the settings merge: the
// resolved step config overrides the context's merged settings for the
// same key.
func stepSetting(cfg map[string]any, rc *Context, key string) string {
	if v, ok := cfg[key]; ok {
		return fmt.Sprintf("%v", v)
	}
	if v, ok := rc.Settings[key]; ok {
		return fmt.Sprintf("%v", v)
	}
	return ""
}

// buildAction runs the component's build command and resolves the
// artifacts it produced.
type buildAction struct {
	runner buildrun.Runner
}

type buildParams struct {
	Command   string                  `mapstructure:"command"`
	Artifacts []buildrun.ArtifactGlob `mapstructure:"artifacts"`
}

func (a *buildAction) Invoke(ctx context.Context, rc *Context, step StepSpec, cfg map[string]any) (*Outcome, error) {
	var p buildParams
	if err := decodeParams(cfg, &p); err != nil {
		return nil, err
	}

	command := p.Command
	if command == "" {
		command = rc.Component.Build.Command
	}
	if command == "" {
		return &Outcome{
			Success: false,
			Hints:   []string{"set build.command on the component or a command in the step config"},
		}, nil
	}

	res, err := a.runner.Run(ctx, rc.Payload.LocalPath, command)
	if err != nil {
		return nil, err
	}

	data := map[string]any{
		"stdout":    res.Stdout,
		"stderr":    res.Stderr,
		"exit_code": res.ExitCode,
	}
	if res.ExitCode != 0 {
		return &Outcome{Success: false, Data: data}, nil
	}

	globs := p.Artifacts
	if len(globs) == 0 {
		globs = rc.Component.Build.Artifacts
	}
	artifacts, err := buildrun.ResolveArtifacts(rc.Payload.LocalPath, globs)
	if err != nil {
		return nil, err
	}
	if artifacts != nil {
		data["artifacts"] = artifacts
	}
	return &Outcome{Success: true, Data: data}, nil
}

// changesAction surfaces the unreleased changelog notes computed into the
// release payload, so dependents can reference them through step data.
type changesAction struct{}

func (a *changesAction) Invoke(ctx context.Context, rc *Context, step StepSpec, cfg map[string]any) (*Outcome, error) {
	out := &Outcome{
		Success: true,
		Data:    map[string]any{"notes": rc.Payload.Notes},
	}
	if rc.Payload.Notes == "" {
		out.Warnings = []string{"no unreleased changelog entries"}
	}
	return out, nil
}

// versionAction persists the release version to the component's version
// file. It is idempotent: a file already at the target version reports
// success again without rewriting.
type versionAction struct {
	versions VersionStore
}

type versionParams struct {
	Version string `mapstructure:"version"`
	Bump    string `mapstructure:"bump"`
}

func (a *versionAction) Invoke(ctx context.Context, rc *Context, step StepSpec, cfg map[string]any) (*Outcome, error) {
	var p versionParams
	if err := decodeParams(cfg, &p); err != nil {
		return nil, err
	}

	current, err := a.versions.Read(rc.VersionFile())
	if err != nil {
		return nil, err
	}

	target := rc.Payload.Version
	if p.Version != "" {
		target = p.Version
	} else if p.Bump != "" {
		target, err = parseAndBump(current, p.Bump)
		if err != nil {
			return nil, err
		}
	}

	if current == target {
		return &Outcome{
			Success: true,
			Data:    map[string]any{"version": target},
			Hints:   []string{fmt.Sprintf("version already at %s", target)},
		}, nil
	}

	if err := a.versions.Write(rc.VersionFile(), target); err != nil {
		return nil, err
	}
	return &Outcome{
		Success: true,
		Data:    map[string]any{"previous": current, "version": target},
	}, nil
}

// gitCommitAction commits all working tree changes. A clean tree is a
// success with a hint, which is what makes a retried pipeline converge.
type gitCommitAction struct {
	git gitops.Git
}

type commitParams struct {
	Message string `mapstructure:"message"`
}

func (a *gitCommitAction) Invoke(ctx context.Context, rc *Context, step StepSpec, cfg map[string]any) (*Outcome, error) {
	var p commitParams
	if err := decodeParams(cfg, &p); err != nil {
		return nil, err
	}

	message := p.Message
	if message == "" {
		message = stepSetting(cfg, rc, "commit_message")
	}
	if message == "" {
		message = fmt.Sprintf("chore(release): %s", rc.Payload.Version)
	} else {
		// Settings-sourced messages may still carry placeholders.
		resolved, err := Resolve(message, rc.Vars())
		if err != nil {
			return nil, err
		}
		message = resolved
	}

	clean, err := a.git.IsClean(ctx, rc.Payload.LocalPath)
	if err != nil {
		return nil, err
	}
	if clean {
		return &Outcome{Success: true, Hints: []string{"nothing to commit, working tree clean"}}, nil
	}

	if err := a.git.Commit(ctx, rc.Payload.LocalPath, message); err != nil {
		return nil, err
	}
	return &Outcome{Success: true, Data: map[string]any{"message": message}}, nil
}

// gitTagAction creates the release tag. A tag that already exists reports
// success with a hint instead of erroring, so retries never redo
// irreversible work.
type gitTagAction struct {
	git gitops.Git
}

type tagParams struct {
	Tag     string `mapstructure:"tag"`
	Message string `mapstructure:"message"`
}

func (a *gitTagAction) Invoke(ctx context.Context, rc *Context, step StepSpec, cfg map[string]any) (*Outcome, error) {
	var p tagParams
	if err := decodeParams(cfg, &p); err != nil {
		return nil, err
	}

	name := p.Tag
	if name == "" {
		name = rc.Payload.Tag
	}

	exists, err := a.git.TagExists(ctx, rc.Payload.LocalPath, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return &Outcome{
			Success: true,
			Data:    map[string]any{"tag": name},
			Hints:   []string{fmt.Sprintf("tag %s already exists", name)},
		}, nil
	}

	message := p.Message
	if message == "" {
		message = fmt.Sprintf("Release %s", rc.Payload.Version)
	}
	if err := a.git.Tag(ctx, rc.Payload.LocalPath, name, message); err != nil {
		return nil, err
	}
	return &Outcome{Success: true, Data: map[string]any{"tag": name}}, nil
}

// gitPushAction pushes the branch and tags to the remote.
type gitPushAction struct {
	git gitops.Git
}

type pushParams struct {
	Remote string `mapstructure:"remote"`
}

func (a *gitPushAction) Invoke(ctx context.Context, rc *Context, step StepSpec, cfg map[string]any) (*Outcome, error) {
	var p pushParams
	if err := decodeParams(cfg, &p); err != nil {
		return nil, err
	}

	remote := p.Remote
	if remote == "" {
		remote = stepSetting(cfg, rc, "remote")
	}
	if remote == "" {
		remote = "origin"
	}

	if err := a.git.Push(ctx, rc.Payload.LocalPath, remote); err != nil {
		return nil, err
	}
	return &Outcome{Success: true, Data: map[string]any{"remote": remote}}, nil
}

// moduleRunAction invokes a named extension's runtime command with the
// same context injection and template resolution as every other action. It
// is deliberately thin: the only extra behavior over an extension action
// is addressing the extension by name instead of by provided action.
type moduleRunAction struct {
	registry *extension.Registry
	runner   extension.Runner
}

type moduleRunParams struct {
	Module string `mapstructure:"module"`
}

func (a *moduleRunAction) Invoke(ctx context.Context, rc *Context, step StepSpec, cfg map[string]any) (*Outcome, error) {
	var p moduleRunParams
	if err := decodeParams(cfg, &p); err != nil {
		return nil, err
	}
	if p.Module == "" {
		return &Outcome{
			Success: false,
			Hints:   []string{`module.run steps need a config entry "module" naming the extension to run`},
		}, nil
	}

	if a.registry == nil {
		return &Outcome{Missing: []string{fmt.Sprintf("extension %q is not installed", p.Module)}}, nil
	}
	ext, ok := a.registry.Extension(p.Module)
	if !ok {
		return &Outcome{Missing: []string{fmt.Sprintf("extension %q is not installed", p.Module)}}, nil
	}

	payload, err := actionPayload(rc, cfg)
	if err != nil {
		return nil, err
	}
	out, err := a.runner.Invoke(ctx, ext, rc.Payload.LocalPath, payload)
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
