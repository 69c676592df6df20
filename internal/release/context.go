package release

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/samber/lo"

	"shipward/internal/buildrun"
	"shipward/internal/changelog"
	"shipward/internal/semver"
	"shipward/internal/store"
)

// defaultVersionFile is used when a component does not name one.
const defaultVersionFile = "VERSION"

// Payload is the immutable release bundle shared by every step of a run.
// It is computed once, before any step executes, and only read afterwards;
// artifacts produced mid-run travel through step result data instead of
// mutating the payload.
type Payload struct {
	Version     string              `json:"version"`
	Tag         string              `json:"tag"`
	Notes       string              `json:"notes"`
	ComponentID string              `json:"component_id"`
	LocalPath   string              `json:"local_path"`
	Artifacts   []buildrun.Artifact `json:"artifacts"`
}

// Context is the execution context of one pipeline run. It is created once
// per run and owned exclusively by that run.
type Context struct {
	RunID string

	// Project is the bound project, nil when the component is unbound.
	Project *store.Project

	// Component is the component under release.
	Component *store.Component

	// Settings is the scope-merged settings map: module defaults, then
	// project scope, then component scope, later scope winning per key.
	// Per-step config overlays these at dispatch time.
	Settings map[string]any

	// Inputs are CLI-supplied values, addressable as {{inputs.<key>}}.
	Inputs map[string]any

	Payload Payload

	// Warnings collected while building the context (missing changelog,
	// unbound project record). Propagated on reports without failing.
	Warnings []string
}

// Vars returns the template variable tree placeholders resolve against.
func (c *Context) Vars() map[string]any {
	vars := map[string]any{
		"release":  c.payloadVars(),
		"settings": c.Settings,
		"inputs":   c.Inputs,
		"component": map[string]any{
			"id":   c.Component.ID,
			"path": c.Component.Path,
		},
	}
	if c.Project != nil {
		vars["project"] = map[string]any{
			"id":   c.Project.ID,
			"name": c.Project.Name,
		}
	}
	return vars
}

func (c *Context) payloadVars() map[string]any {
	return map[string]any{
		"version":      c.Payload.Version,
		"tag":          c.Payload.Tag,
		"notes":        c.Payload.Notes,
		"component_id": c.Payload.ComponentID,
		"local_path":   c.Payload.LocalPath,
	}
}

// VersionFile returns the component's version file path.
func (c *Context) VersionFile() string {
	name := c.Component.VersionFile
	if name == "" {
		name = defaultVersionFile
	}
	return filepath.Join(c.Component.Path, name)
}

// VersionSource reads a component's current version state.
type VersionSource interface {
	Read(path string) (string, error)
}

// NotesSource produces unreleased changelog text.
type NotesSource interface {
	Unreleased(path string) (string, error)
}

// ContextBuilder constructs the [Context] for a run.
type ContextBuilder struct {
	// Store resolves project and component records.
	Store *store.Store

	// Versions reads version state; Notes reads unreleased changelog text.
	Versions VersionSource
	Notes    NotesSource

	// Defaults are module-default settings, the lowest merge scope.
	Defaults map[string]any

	// TagPrefix forms the release tag from the version. A component or
	// project "tag_prefix" setting overrides it.
	TagPrefix string
}

// Build resolves bindings, merges settings and computes the release
// payload for the named component.
func (b *ContextBuilder) Build(componentID string, inputs map[string]any) (*Context, error) {
	component, err := b.Store.Component(componentID)
	if err != nil {
		return nil, err
	}

	rc := &Context{
		Component: component,
		Inputs:    inputs,
	}

	var projectSettings map[string]any
	if component.Project != "" {
		project, err := b.Store.Project(component.Project)
		if err != nil {
			if !errors.Is(err, store.ErrProjectNotFound) {
				return nil, err
			}
			rc.warn(fmt.Sprintf("component references project %q, which has no record", component.Project))
		} else {
			rc.Project = project
			projectSettings = project.Settings
		}
	}

	// Later scope wins; merge is a shallow key overwrite.
	rc.Settings = lo.Assign(map[string]any{}, b.Defaults, projectSettings, component.Settings)

	version, err := b.buildVersion(rc, inputs)
	if err != nil {
		return nil, err
	}

	rc.Payload = Payload{
		Version:     version,
		Tag:         b.tagFor(rc, version),
		Notes:       b.buildNotes(rc),
		ComponentID: component.ID,
		LocalPath:   component.Path,
	}
	return rc, nil
}

// buildVersion derives the release version from the component's current
// version state, optionally bumped via the "bump" input or setting.
func (b *ContextBuilder) buildVersion(rc *Context, inputs map[string]any) (string, error) {
	current, err := b.Versions.Read(rc.VersionFile())
	if err != nil {
		return "", fmt.Errorf("cannot determine component version (add a %s file): %w",
			defaultVersionFile, err)
	}

	bump := stringValue(inputs["bump"])
	if bump == "" {
		bump = stringValue(rc.Settings["bump"])
	}
	if bump == "" {
		return current, nil
	}

	v, err := parseAndBump(current, bump)
	if err != nil {
		return "", err
	}
	return v, nil
}

func (b *ContextBuilder) tagFor(rc *Context, version string) string {
	prefix := stringValue(rc.Settings["tag_prefix"])
	if prefix == "" {
		prefix = b.TagPrefix
	}
	return prefix + version
}

// buildNotes reads unreleased changelog text, degrading to warnings: a
// missing or unconfigured changelog never fails the run.
func (b *ContextBuilder) buildNotes(rc *Context) string {
	if rc.Component.Changelog == "" {
		rc.warn("no changelog configured for component")
		return ""
	}
	path := filepath.Join(rc.Component.Path, rc.Component.Changelog)
	notes, err := b.Notes.Unreleased(path)
	if err != nil {
		if errors.Is(err, changelog.ErrNoChangelog) {
			rc.warn(fmt.Sprintf("changelog %s not found", rc.Component.Changelog))
		} else {
			rc.warn(fmt.Sprintf("failed to read changelog: %v", err))
		}
		return ""
	}
	if notes == "" {
		rc.warn("no unreleased changelog entries")
	}
	return notes
}

func (c *Context) warn(msg string) {
	c.Warnings = append(c.Warnings, msg)
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}

func parseAndBump(current, kind string) (string, error) {
	v, err := semver.Parse(current)
	if err != nil {
		return "", err
	}
	bumped, err := v.Bump(kind)
	if err != nil {
		return "", err
	}
	return bumped.String(), nil
}
