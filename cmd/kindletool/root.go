// Command kindletool builds, signs, inspects, and decomposes firmware
// update packages for a family of e-reader devices.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rclone/kindletool/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "kindletool",
	Short:         "Build, sign, inspect, and decompose e-reader firmware update packages",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// cfg is read once at process start, per spec's "populated once at startup,
// read-only thereafter" design note for the one process-wide flag.
var cfg = config.FromEnvironment()

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "kindletool:", err)
		os.Exit(1)
	}
}
