package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/go-arrower/todo"
	todo_init "github.com/go-arrower/todo/contexts/todo/init"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(osSignal <-chan os.Signal) *cobra.Command {
	return &cobra.Command{
		Use:                   "serve",
		Short:                 "serve the todo api until the process is interrupted",
		Long:                  ``,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			blue := color.New(color.FgBlue, color.Bold).FprintfFunc()

			conf, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			dc, err := todo.InitialiseDefaultDependencies(ctx, conf)
			if err != nil {
				return fmt.Errorf("could not initialise dependencies: %w", err)
			}

			todoContext, err := todo_init.NewTodoContext(ctx, dc)
			if err != nil {
				_ = dc.Shutdown(ctx)

				return err //nolint:wrapcheck // error is descriptive already
			}

			if err = dc.Start(ctx); err != nil {
				_ = dc.Shutdown(ctx)

				return fmt.Errorf("could not start: %w", err)
			}

			blue(cmd.OutOrStdout(), "serving %s on port %d with %s storage\n",
				conf.ApplicationName, conf.HTTP.Port, conf.Storage.Backend)

			<-osSignal

			blue(cmd.OutOrStdout(), "shutting down\n")

			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()

			if err = todoContext.Shutdown(ctx); err != nil {
				return fmt.Errorf("could not shutdown context todo: %w", err)
			}

			return dc.Shutdown(ctx) //nolint:wrapcheck // error is descriptive already
		},
	}
}
