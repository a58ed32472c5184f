package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// buildVersion is overridden at link time with -ldflags "-X main.buildVersion=...".
var buildVersion = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number and exit",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("kindletool %s\n", buildVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
