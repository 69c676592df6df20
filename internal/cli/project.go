package cli

import (
	"github.com/spf13/cobra"

	"shipward/internal/store"
)

func newProjectCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage project records",
	}
	cmd.AddCommand(
		newProjectListCommand(app),
		newProjectAddCommand(app),
		newProjectShowCommand(app),
		newProjectRemoveCommand(app),
	)
	return cmd
}

func newProjectListCommand(app *App) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Store.Projects()
			if err != nil {
				return app.fail(err)
			}
			if err := app.printer(jsonOut).Projects(projects); err != nil {
				return app.fail(err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the listing as JSON")
	return cmd
}

func newProjectAddCommand(app *App) *cobra.Command {
	var (
		name        string
		description string
	)
	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project := store.Project{ID: args[0], Name: name, Description: description}
			if err := app.Store.AddProject(project); err != nil {
				return app.fail(err)
			}
			app.printer(false).Success("added project %s", project.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&description, "description", "", "short description")
	return cmd
}

func newProjectShowCommand(app *App) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project, err := app.Store.Project(args[0])
			if err != nil {
				return app.fail(err)
			}
			if err := app.printer(jsonOut).Projects([]store.Project{*project}); err != nil {
				return app.fail(err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the record as JSON")
	return cmd
}

func newProjectRemoveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.RemoveProject(args[0]); err != nil {
				return app.fail(err)
			}
			app.printer(false).Success("removed project %s", args[0])
			return nil
		},
	}
}
