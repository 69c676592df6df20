// Package gitops wraps the git primitives the release pipeline needs.
//
// The [Git] interface is the contract consumed by the release actions;
// [ExecGit] is the production implementation spawning the git binary, and
// [MockGit] is an in-memory implementation for tests.
//
// Every operation takes the working directory explicitly so one Git value
// can serve any number of components.
package gitops

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"shipward/internal/logger"
)

// Git is the set of git operations used by release pipeline steps.
type Git interface {
	// IsClean reports whether the worktree at dir has no uncommitted changes.
	IsClean(ctx context.Context, dir string) (bool, error)

	// Commit stages all changes in dir and commits them with the message.
	Commit(ctx context.Context, dir, message string) error

	// Tag creates an annotated tag at HEAD.
	Tag(ctx context.Context, dir, name, message string) error

	// TagExists reports whether the named tag already exists.
	TagExists(ctx context.Context, dir, name string) (bool, error)

	// Push pushes the current branch to the remote, including tags.
	Push(ctx context.Context, dir, remote string) error
}

// ExecGit implements [Git] by running the git binary.
type ExecGit struct {
	// Binary is the git executable name or path. Defaults to "git".
	Binary string
}

// NewExecGit creates an [ExecGit] using "git" from PATH.
func NewExecGit() *ExecGit {
	return &ExecGit{Binary: "git"}
}

func (g *ExecGit) run(ctx context.Context, dir string, args ...string) (string, error) {
	bin := g.Binary
	if bin == "" {
		bin = "git"
	}

	log := logger.GetGitLogger()
	log.Debug().Str("dir", dir).Strs("args", args).Msg("running git")

	cmd := exec.CommandContext(ctx, bin, append([]string{"-C", dir}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return stdout.String(), fmt.Errorf("git %s: %s", args[0], msg)
	}
	return stdout.String(), nil
}

// IsClean implements [Git].
func (g *ExecGit) IsClean(ctx context.Context, dir string) (bool, error) {
	out, err := g.run(ctx, dir, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) == "", nil
}

// Commit implements [Git].
func (g *ExecGit) Commit(ctx context.Context, dir, message string) error {
	if _, err := g.run(ctx, dir, "add", "-A"); err != nil {
		return err
	}
	_, err := g.run(ctx, dir, "commit", "-m", message)
	return err
}

// Tag implements [Git].
func (g *ExecGit) Tag(ctx context.Context, dir, name, message string) error {
	if message == "" {
		message = name
	}
	_, err := g.run(ctx, dir, "tag", "-a", name, "-m", message)
	return err
}

// TagExists implements [Git].
func (g *ExecGit) TagExists(ctx context.Context, dir, name string) (bool, error) {
	out, err := g.run(ctx, dir, "tag", "--list", name)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// Push implements [Git].
func (g *ExecGit) Push(ctx context.Context, dir, remote string) error {
	if remote == "" {
		remote = "origin"
	}
	_, err := g.run(ctx, dir, "push", "--follow-tags", remote)
	return err
}
