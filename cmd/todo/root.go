package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/go-arrower/todo"
	"github.com/go-arrower/todo/cmd"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "todo",
		Short: "todo keeps track of your todos.",
		Long: `A todo service with interchangeable storage backends.
Configure it with a config file or with environment variables prefixed with ` + todo.EnvPrefix + `_.`,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		SilenceUsage:          true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file, e.g. ./todo.yaml")

	return rootCmd
}

// NewTodoCLI initialises the complete cli with its commands and returns the root command.
func NewTodoCLI(osSignal <-chan os.Signal) *cobra.Command {
	rootCmd := newRootCmd()
	rootCmd.AddCommand(cmd.Version("todo"))
	rootCmd.AddCommand(newServeCmd(osSignal))
	rootCmd.AddCommand(newDemoCmd())

	return rootCmd
}

// Execute runs the todo cli.
func Execute() {
	if err := NewTodoCLI(NewInterruptSignalChannel()).Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

// NewInterruptSignalChannel returns a channel listening for os.Signals the server will shut down on.
func NewInterruptSignalChannel() chan os.Signal {
	signalsToListenTo := []os.Signal{
		syscall.SIGINT,                   // Strg + c
		syscall.SIGTERM, syscall.SIGQUIT, // terminate but finish/cleanup first, e.g. kill
		os.Interrupt,
	}

	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, signalsToListenTo...)

	return osSignal
}

// loadConfig reads the file given by the config flag, if any.
// Environment variables take precedence over the file.
func loadConfig(cmd *cobra.Command) (*todo.Config, error) {
	vip := todo.DefaultViper()

	file, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read flag: %w", err)
	}

	if file != "" {
		vip.SetConfigFile(file)

		if err := vip.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("could not read config: %w", err)
		}
	}

	conf := &todo.Config{}
	if err := vip.Unmarshal(conf); err != nil {
		return nil, err //nolint:wrapcheck // error is descriptive already
	}

	return conf, nil
}
