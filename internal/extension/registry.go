// Package extension discovers installed shipward extensions and invokes
// their runtime commands.
//
// An extension is a directory under the workspace extensions dir containing
// an extension.yaml manifest:
//
//	name: npm-publish
//	version: 1.2.0
//	actions:
//	  - release.npm.publish
//	runtime:
//	  command: ./bin/npm-publish
//	  args: ["--ci"]
//
// The registry's only job here is action resolution: mapping a
// "release.<type>" action name (or an explicit extension name for
// module.run) to an invocable runtime command. Installation and updates
// happen outside this package.
//
// Key types:
//   - [Registry] - discovered extensions with action resolution
//   - [Runner] / [ExecRunner] - runtime command invocation
//   - [Outcome] - normalized extension result
package extension

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"shipward/internal/logger"
)

// ManifestFile is the manifest file name inside each extension directory.
const ManifestFile = "extension.yaml"

// Runtime describes how to invoke an extension.
type Runtime struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args,omitempty"`
}

// Manifest is the parsed extension.yaml.
type Manifest struct {
	Name    string   `yaml:"name"`
	Version string   `yaml:"version,omitempty"`
	Actions []string `yaml:"actions,omitempty"`
	Runtime Runtime  `yaml:"runtime"`
}

// Extension is an installed extension: its manifest plus install directory.
type Extension struct {
	Manifest

	// Dir is the extension's install directory; runtime commands with
	// relative paths resolve against it.
	Dir string
}

// Registry holds the extensions discovered for one CLI invocation. Its
// lifetime is scoped to that invocation; construct it explicitly and pass
// it down rather than keeping global state.
type Registry struct {
	byName map[string]*Extension
	names  []string
}

// Discover scans dir for extension directories containing a manifest. A
// missing dir yields an empty registry, not an error: having no extensions
// installed is a normal state.
func Discover(dir string) (*Registry, error) {
	reg := &Registry{byName: make(map[string]*Extension)}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return reg, nil
		}
		return nil, fmt.Errorf("failed to scan extensions directory: %w", err)
	}

	log := logger.GetExtensionLogger()
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		extDir := filepath.Join(dir, entry.Name())
		manifestPath := filepath.Join(extDir, ManifestFile)

		data, err := os.ReadFile(manifestPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", manifestPath, err)
		}

		var m Manifest
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", manifestPath, err)
		}
		if m.Name == "" {
			m.Name = entry.Name()
		}
		if m.Runtime.Command == "" {
			return nil, fmt.Errorf("extension %s: runtime.command is required", m.Name)
		}

		reg.byName[m.Name] = &Extension{Manifest: m, Dir: extDir}
		reg.names = append(reg.names, m.Name)
		log.Debug().Str("extension", m.Name).Str("dir", extDir).Msg("discovered extension")
	}

	sort.Strings(reg.names)
	return reg, nil
}

// Names returns the discovered extension names, sorted.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Extension returns the installed extension with the given name.
func (r *Registry) Extension(name string) (*Extension, bool) {
	ext, ok := r.byName[name]
	return ext, ok
}

// ResolveAction finds the extension providing the named action among the
// attached extensions, in attachment order. An empty attached list means
// every installed extension is a candidate, searched in name order.
func (r *Registry) ResolveAction(action string, attached []string) (*Extension, bool) {
	candidates := attached
	if len(candidates) == 0 {
		candidates = r.names
	}
	for _, name := range candidates {
		ext, ok := r.byName[name]
		if !ok {
			continue
		}
		for _, a := range ext.Actions {
			if a == action {
				return ext, true
			}
		}
	}
	return nil, false
}
