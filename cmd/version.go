package cmd

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Mostra a versão do aprova",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout(), resolveVersion())
	},
}

// resolveVersion falls back to the module version recorded by
// `go install` when no ldflags version was set.
func resolveVersion() string {
	if version != "(devel)" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return version
}

func printVersion(w io.Writer, v string) {
	fmt.Fprintf(w, "aprova %s (%s, %s/%s)\n", v, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
