package main

import (
	"github.com/spf13/cobra"

	"github.com/rclone/kindletool/internal/unpackager"
)

var extractUnsigned bool

var extractCmd = &cobra.Command{
	Use:   "extract [options] <input> <output-dir>",
	Short: "Decode a firmware update package and extract it to a directory",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := openInput(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = unpackager.Extract(f, args[1], unpackager.Options{Unsigned: extractUnsigned})
		return err
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().BoolVarP(&extractUnsigned, "unsigned", "u", false, "assume input is an unsigned & mangled userdata package")
}
