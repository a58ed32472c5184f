package main

import (
	"github.com/spf13/cobra"

	"github.com/rclone/kindletool/internal/scramble"
)

var mdCmd = &cobra.Command{
	Use:   "md [input] [output]",
	Short: "Scramble a file using the update byte-permutation transform",
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
		return scramble.Scramble(in, out, 0, false)
	},
}

func init() {
	rootCmd.AddCommand(mdCmd)
}
