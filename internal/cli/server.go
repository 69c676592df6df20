package cli

import (
	"github.com/spf13/cobra"

	"shipward/internal/store"
)

func newServerCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Manage server records",
		Long: `Manage deployment target records. Servers are inventory only: the
release pipeline runs locally and never contacts them.`,
	}
	cmd.AddCommand(
		newServerListCommand(app),
		newServerAddCommand(app),
		newServerShowCommand(app),
		newServerRemoveCommand(app),
	)
	return cmd
}

func newServerListCommand(app *App) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			servers, err := app.Store.Servers()
			if err != nil {
				return app.fail(err)
			}
			if err := app.printer(jsonOut).Servers(servers); err != nil {
				return app.fail(err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the listing as JSON")
	return cmd
}

func newServerAddCommand(app *App) *cobra.Command {
	var (
		host  string
		port  int
		user  string
		roles []string
	)
	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := store.Server{ID: args[0], Host: host, Port: port, User: user, Roles: roles}
			if err := app.Store.AddServer(srv); err != nil {
				return app.fail(err)
			}
			app.printer(false).Success("added server %s", srv.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "hostname or address")
	cmd.Flags().IntVar(&port, "port", 0, "ssh port")
	cmd.Flags().StringVar(&user, "user", "", "login user")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "server role (repeatable)")
	_ = cmd.MarkFlagRequired("host")
	return cmd
}

func newServerShowCommand(app *App) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := app.Store.Server(args[0])
			if err != nil {
				return app.fail(err)
			}
			if err := app.printer(jsonOut).Servers([]store.Server{*srv}); err != nil {
				return app.fail(err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit the record as JSON")
	return cmd
}

func newServerRemoveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.RemoveServer(args[0]); err != nil {
				return app.fail(err)
			}
			app.printer(false).Success("removed server %s", args[0])
			return nil
		},
	}
}
