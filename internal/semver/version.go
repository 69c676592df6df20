// Package semver manages component version state.
//
// A component's version lives in a plain-text version file (a single
// semantic version string such as "1.4.2"). [Manager] reads and writes
// that file; [Version] provides parsing and bump arithmetic.
package semver

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Bump kinds accepted by [Version.Bump] and the version pipeline step.
const (
	BumpMajor = "major"
	BumpMinor = "minor"
	BumpPatch = "patch"
)

// Version is a parsed semantic version.
type Version struct {
	Major int
	Minor int
	Patch int

	// Pre is the optional pre-release identifier ("rc.1" in "2.0.0-rc.1").
	Pre string
}

// Parse parses a semantic version string. A leading "v" is tolerated.
func Parse(s string) (Version, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "v"))

	var pre string
	if i := strings.IndexByte(raw, '-'); i >= 0 {
		pre = raw[i+1:]
		raw = raw[:i]
	}

	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version %q: expected MAJOR.MINOR.PATCH", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version %q: %q is not a version number", s, p)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2], Pre: pre}, nil
}

// String renders the version without a "v" prefix.
func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Pre != "" {
		s += "-" + v.Pre
	}
	return s
}

// Bump returns the version incremented by the given kind. Bumping clears
// any pre-release identifier.
func (v Version) Bump(kind string) (Version, error) {
	switch kind {
	case BumpMajor:
		return Version{Major: v.Major + 1}, nil
	case BumpMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}, nil
	case BumpPatch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}, nil
	default:
		return Version{}, fmt.Errorf("unknown bump kind %q (want major, minor or patch)", kind)
	}
}

// Manager reads and writes version files.
type Manager struct{}

// NewManager creates a version file [Manager].
func NewManager() *Manager {
	return &Manager{}
}

// Read parses the version stored at path.
func (m *Manager) Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read version file: %w", err)
	}
	v, err := Parse(string(data))
	if err != nil {
		return "", fmt.Errorf("version file %s: %w", path, err)
	}
	return v.String(), nil
}

// Write stores the version at path, validating it first. The file ends
// with a trailing newline so diffs stay clean.
func (m *Manager) Write(path, version string) error {
	v, err := Parse(version)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(v.String()+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write version file: %w", err)
	}
	return nil
}
