package store

import "shipward/internal/buildrun"

// Project is a named group of components sharing settings.
type Project struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name,omitempty"`
	Description string         `yaml:"description,omitempty"`
	Settings    map[string]any `yaml:"settings,omitempty"`
}

// Server is a deployment target host. Servers are managed by the CLI but
// the release pipeline never contacts them; all steps run locally.
type Server struct {
	ID    string   `yaml:"id"`
	Host  string   `yaml:"host"`
	Port  int      `yaml:"port,omitempty"`
	User  string   `yaml:"user,omitempty"`
	Roles []string `yaml:"roles,omitempty"`
}

// BuildSpec is a component's build configuration.
type BuildSpec struct {
	// Command is the shell command that builds the component.
	Command string `yaml:"command,omitempty"`

	// Artifacts are the globs resolved to artifact descriptors after a
	// successful build.
	Artifacts []buildrun.ArtifactGlob `yaml:"artifacts,omitempty"`
}

// Component is a releasable unit bound to a local working directory.
type Component struct {
	ID string `yaml:"id"`

	// Project is the id of the owning project. Optional; an unbound
	// component simply has no project-scope settings.
	Project string `yaml:"project,omitempty"`

	// Path is the component's local working directory.
	Path string `yaml:"path"`

	// VersionFile is the version state file, relative to Path.
	// Defaults to "VERSION".
	VersionFile string `yaml:"version_file,omitempty"`

	// Changelog is the changelog file, relative to Path. Empty means the
	// component has no changelog configured (a warning, not an error).
	Changelog string `yaml:"changelog,omitempty"`

	// Build is the build command and artifact configuration.
	Build BuildSpec `yaml:"build,omitempty"`

	// Settings are component-scope settings, overriding project scope.
	Settings map[string]any `yaml:"settings,omitempty"`

	// Extensions names the extensions attached to this component, in
	// resolution order.
	Extensions []string `yaml:"extensions,omitempty"`
}
