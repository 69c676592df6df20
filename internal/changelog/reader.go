// Package changelog extracts unreleased release notes from a
// keep-a-changelog style markdown file.
package changelog

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// ErrNoChangelog indicates the changelog file does not exist. Callers
// surface this as a warning on the release report, not a failure.
var ErrNoChangelog = errors.New("changelog file not found")

// Matches a version heading such as "## [Unreleased]" or "## [1.2.0] - 2026-01-10".
var headingRe = regexp.MustCompile(`^##\s+\[?([^\]]+)\]?`)

// Reader extracts sections from changelog files.
type Reader struct{}

// NewReader creates a changelog [Reader].
func NewReader() *Reader {
	return &Reader{}
}

// Unreleased returns the trimmed body of the "Unreleased" section of the
// changelog at path. An existing file without an Unreleased section, or
// with an empty one, yields an empty string and no error.
func (r *Reader) Unreleased(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoChangelog
		}
		return "", fmt.Errorf("failed to open changelog: %w", err)
	}
	defer f.Close()

	var (
		lines  []string
		inside bool
	)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if m := headingRe.FindStringSubmatch(line); m != nil {
			if inside {
				break
			}
			inside = strings.EqualFold(strings.TrimSpace(m[1]), "unreleased")
			continue
		}
		if inside {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read changelog: %w", err)
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
