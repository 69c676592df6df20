// Package cli wires shipward's cobra command tree to the release service
// and the record store.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"shipward/internal/config"
	"shipward/internal/logger"
	"shipward/internal/output"
	"shipward/internal/release"
	"shipward/internal/store"
)

// Releaser is the release service surface the commands depend on.
// [release.Service] implements it; tests substitute a mock.
type Releaser interface {
	Plan(ctx context.Context, componentID string, inputs map[string]any) (*release.Report, error)
	Run(ctx context.Context, componentID string, inputs map[string]any, strict bool) (*release.Report, error)
}

// App carries the dependencies shared by all commands.
type App struct {
	Config   *config.Config
	Store    *store.Store
	Releaser Releaser

	// Stdout receives command output; stderr is reserved for logs and
	// error messages. Tests redirect both.
	Stdout io.Writer
	Stderr io.Writer
}

// NewApp constructs an [App] with production collaborators.
func NewApp(cfg *config.Config) (*App, error) {
	st := store.New(cfg.Workspace)
	collaborators, err := release.DefaultCollaborators(cfg)
	if err != nil {
		return nil, err
	}
	return &App{
		Config:   cfg,
		Store:    st,
		Releaser: release.NewService(cfg, st, collaborators),
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}, nil
}

// printer returns the output renderer for one command invocation.
func (a *App) printer(jsonOut bool) *output.Printer {
	return output.NewPrinterWithWriter(a.Stdout, jsonOut)
}

// fail prints err and converts it to an [ExitError] with code 1.
func (a *App) fail(err error) error {
	fmt.Fprintf(a.Stderr, "Error: %v\n", err)
	return NewExitError(1)
}

// ExecuteResult is the outcome of one command-tree execution.
type ExecuteResult struct {
	ExitCode int
	Err      error
}

// NewRootCommand builds the shipward command tree over app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "shipward",
		Short:         "Deployment automation for project components",
		Long:          "shipward manages projects, components and servers, and plans and runs per-component release pipelines.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newReleaseCommand(app),
		newProjectCommand(app),
		newComponentCommand(app),
		newServerCommand(app),
	)
	return root
}

// RunWithConfig executes the command tree for args under cfg and returns
// the exit code instead of terminating the process.
func RunWithConfig(args []string, cfg *config.Config) ExecuteResult {
	app, err := NewApp(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExecuteResult{ExitCode: 1, Err: err}
	}

	root := NewRootCommand(app)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		if code, ok := IsExitError(err); ok {
			return ExecuteResult{ExitCode: code, Err: err}
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExecuteResult{ExitCode: 1, Err: err}
	}
	return ExecuteResult{}
}

// Execute is the process entry point: it loads configuration, initializes
// logging and exits with the command's exit code.
func Execute() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	result := RunWithConfig(os.Args[1:], cfg)
	if result.ExitCode != 0 {
		os.Exit(result.ExitCode)
	}
}
