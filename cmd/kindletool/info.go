package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rclone/kindletool/internal/devcode"
)

var infoCmd = &cobra.Command{
	Use:   "info <serialno>",
	Short: "Derive the default root and recovery passwords for a serial number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, recovery, err := devcode.DefaultPasswords(args[0])
		if err != nil {
			return err
		}
		fmt.Println(root)
		fmt.Println(recovery)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
