package extension

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"shipward/internal/logger"
)

// Outcome is the normalized result of an extension invocation.
//
// Extensions report structured outcomes by printing a single JSON object
// line to stdout; the last parseable line wins. Extensions that print
// nothing structured are judged by exit code alone.
type Outcome struct {
	Success  bool           `json:"success"`
	Data     map[string]any `json:"data,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
	Hints    []string       `json:"hints,omitempty"`
}

// Runner invokes extension runtime commands.
//
// The payload is the shared action payload (release payload plus step
// config) encoded as JSON; it is written to the process's stdin. The dir
// is the component working directory the action operates on.
type Runner interface {
	Invoke(ctx context.Context, ext *Extension, dir string, payload []byte) (*Outcome, error)
}

// ExecRunner implements [Runner] by spawning the extension's runtime
// command as a subprocess.
type ExecRunner struct{}

// NewExecRunner creates an [ExecRunner].
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Invoke implements [Runner]. A failed process is not an invocation error;
// it yields an unsuccessful [Outcome] carrying stdout, stderr and the exit
// code so the scheduler can record a failed step rather than abort.
func (r *ExecRunner) Invoke(ctx context.Context, ext *Extension, dir string, payload []byte) (*Outcome, error) {
	command := ext.Runtime.Command
	if !filepath.IsAbs(command) && strings.ContainsRune(command, filepath.Separator) {
		// Relative runtime paths resolve against the extension's install dir.
		command = filepath.Join(ext.Dir, command)
	}

	log := logger.GetExtensionLogger()
	log.Debug().Str("extension", ext.Name).Str("command", command).Msg("invoking extension runtime")

	cmd := exec.CommandContext(ctx, command, ext.Runtime.Args...)
	cmd.Dir = dir
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	exitCode := 0
	if err := cmd.Run(); err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return nil, fmt.Errorf("failed to invoke extension %s: %w", ext.Name, err)
		}
		exitCode = exitErr.ExitCode()
	}

	if exitCode != 0 {
		return &Outcome{
			Success: false,
			Data: map[string]any{
				"stdout":    stdout.String(),
				"stderr":    stderr.String(),
				"exit_code": exitCode,
			},
		}, nil
	}

	if outcome := lastJSONOutcome(stdout.Bytes()); outcome != nil {
		return outcome, nil
	}

	out := &Outcome{Success: true}
	if s := strings.TrimSpace(stdout.String()); s != "" {
		out.Data = map[string]any{"stdout": s}
	}
	return out, nil
}

// lastJSONOutcome scans stdout for the last line that parses as an
// [Outcome] object. Lines that are not JSON objects are plain output and
// are skipped.
func lastJSONOutcome(stdout []byte) *Outcome {
	var found *Outcome
	scanner := bufio.NewScanner(bytes.NewReader(stdout))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var o Outcome
		if err := json.Unmarshal([]byte(line), &o); err != nil {
			continue
		}
		found = &o
	}
	return found
}
