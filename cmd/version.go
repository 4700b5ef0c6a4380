package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X github.com/kamusis/acco/cmd.version=...".
var (
	version   = "dev"
	commit    = ""
	buildDate = ""
)

var flagVersionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show acco version and build information",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		writeVersion(os.Stdout, flagVersionShort)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&flagVersionShort, "short", false, "Print only the version number")
	rootCmd.AddCommand(versionCmd)
}

// writeVersion prints "acco <version>" and, unless short, one line of build
// details: "commit <sha>, built <date>, go1.x linux/amd64".
func writeVersion(w io.Writer, short bool) {
	if short {
		fmt.Fprintln(w, version)
		return
	}
	fmt.Fprintf(w, "acco %s\n", version)
	build := "unreleased build"
	if commit != "" {
		build = "commit " + commit
		if buildDate != "" {
			build += ", built " + buildDate
		}
	}
	fmt.Fprintf(w, "  %s, %s %s/%s\n", build, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
