package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-arrower/todo"
	todo_init "github.com/go-arrower/todo/contexts/todo/init"
)

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "walk through the life cycle of two todos",
		Long: `Creates two todos, completes the first one, lists the incomplete ones,
deletes the second one and lists all remaining todos.
The demo always uses a fresh in memory storage, independent of the configured backend.`,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			conf.Storage.Backend = todo.MemoryBackend
			conf.HTTP.StatusEndpointEnabled = false

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			dc, err := todo.InitialiseDefaultDependencies(ctx, conf)
			if err != nil {
				return fmt.Errorf("could not initialise dependencies: %w", err)
			}
			defer dc.Shutdown(ctx) //nolint:errcheck // nothing is served, so nothing to clean up

			todoContext, err := todo_init.NewTodoContext(ctx, dc)
			if err != nil {
				return err //nolint:wrapcheck // error is descriptive already
			}

			return todoContext.RunDemo(ctx, cmd.OutOrStdout()) //nolint:wrapcheck // error is descriptive already
		},
	}
}
