package cli

import (
	"github.com/spf13/cobra"

	"shipward/internal/store"
)

func newComponentCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "component",
		Short: "Manage component records",
	}
	cmd.AddCommand(
		newComponentListCommand(app),
		newComponentAddCommand(app),
		newComponentShowCommand(app),
		newComponentRemoveCommand(app),
	)
	return cmd
}

func newComponentListCommand(app *App) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List components",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			components, err := app.Store.Components()
			if err != nil {
				return app.fail(err)
			}
			if err := app.printer(jsonOut).Components(components); err != nil {
				return app.fail(err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the listing as JSON")
	return cmd
}

func newComponentAddCommand(app *App) *cobra.Command {
	var (
		project      string
		path         string
		versionFile  string
		changelog    string
		buildCommand string
		extensions   []string
	)
	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a component",
		Long: `Register a local working directory as a releasable component. The
release pipeline itself is declared in release.yaml inside that
directory, not in the record.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			component := store.Component{
				ID:          args[0],
				Project:     project,
				Path:        path,
				VersionFile: versionFile,
				Changelog:   changelog,
				Build:       store.BuildSpec{Command: buildCommand},
				Extensions:  extensions,
			}
			if err := app.Store.AddComponent(component); err != nil {
				return app.fail(err)
			}
			app.printer(false).Success("added component %s", component.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&project, "project", "", "owning project id")
	cmd.Flags().StringVar(&path, "path", ".", "component working directory")
	cmd.Flags().StringVar(&versionFile, "version-file", "", "version file relative to the path (default VERSION)")
	cmd.Flags().StringVar(&changelog, "changelog", "", "changelog file relative to the path")
	cmd.Flags().StringVar(&buildCommand, "build-command", "", "shell command that builds the component")
	cmd.Flags().StringSliceVar(&extensions, "extension", nil, "attached extension (repeatable)")
	return cmd
}

func newComponentShowCommand(app *App) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			component, err := app.Store.Component(args[0])
			if err != nil {
				return app.fail(err)
			}
			if err := app.printer(jsonOut).Components([]store.Component{*component}); err != nil {
				return app.fail(err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the record as JSON")
	return cmd
}

func newComponentRemoveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a component",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.RemoveComponent(args[0]); err != nil {
				return app.fail(err)
			}
			app.printer(false).Success("removed component %s", args[0])
			return nil
		},
	}
}
