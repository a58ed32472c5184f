package main

import (
	"github.com/spf13/cobra"

	"github.com/rclone/kindletool/internal/scramble"
)

var dmCmd = &cobra.Command{
	Use:   "dm [input] [output]",
	Short: "Unscramble a file using the update byte-permutation transform",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := openInput(argOrDefault(args, 0, "-"))
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := openOutput(argOrDefault(args, 1, "-"))
		if err != nil {
			return err
		}
		defer out.Close()
		return scramble.Unscramble(in, out, 0, false)
	},
}

func init() {
	rootCmd.AddCommand(dmCmd)
}
