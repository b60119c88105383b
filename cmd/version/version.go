package version

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/AtMostafa/bnd/pkg/version"
)

// Mocked for unit testing.
var stdout io.Writer = os.Stdout

// New creates a new `version` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of bnd",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			run()
		},
	}
}

func run() {
	fmt.Fprintf(stdout, "bnd version: %s\n", version.Version)
	fmt.Fprintf(stdout, "go version:  %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
