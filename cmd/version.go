// Package cmd contains building blocks shared by the cobra commands of this module.
package cmd

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Version returns a `version` command to be added to any cobra (root) command.
// If name is empty, the output starts with `version:`.
func Version(name string) *cobra.Command {
	name = strings.TrimSpace(name)

	short := "Print version"
	prefix := "version"

	if name != "" {
		short = "Print " + name + " version"
		prefix = name + " version"
	}

	return &cobra.Command{
		Use:                   "version",
		Short:                 short,
		Long:                  ``,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		Run: func(cmd *cobra.Command, _ []string) {
			info := readBuildInfo()

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s from %s\n", prefix, info.version(), info.timestamp())
		},
	}
}

// buildInfo is the vcs information stamped into the binary by `go build`.
// `go run` and `go test` leave it empty.
type buildInfo struct {
	revision string
	time     string
	modified bool
}

// version is the commit hash or @latest, if the binary contains uncommitted code.
func (b buildInfo) version() string {
	if b.modified || b.revision == "" {
		return "@latest"
	}

	return b.revision
}

func (b buildInfo) timestamp() string {
	if b.modified || b.revision == "" {
		return time.Now().UTC().Format(time.RFC3339)
	}

	return b.time
}

func readBuildInfo() buildInfo {
	var b buildInfo

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			b.revision = setting.Value
		case "vcs.time":
			b.time = setting.Value
		case "vcs.modified":
			b.modified = setting.Value == "true"
		}
	}

	return b
}
