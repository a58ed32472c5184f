package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rclone/kindletool/internal/unpackager"
)

var (
	convertStdout   bool
	convertInfoOnly bool
	convertSig      bool
	convertKeep     bool
	convertUnsigned bool
	convertUnwrap   bool
)

var convertCmd = &cobra.Command{
	Use:   "convert [options] <input>...",
	Short: "Convert a firmware update package to its plain gzipped tar archive",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	flags := convertCmd.Flags()
	flags.BoolVarP(&convertStdout, "stdout", "c", false, "write to standard output, keeping the input unchanged")
	flags.BoolVarP(&convertInfoOnly, "info", "i", false, "only print the package information, no conversion")
	flags.BoolVarP(&convertSig, "sig", "s", false, "OTA V2 updates only: extract the payload signature")
	flags.BoolVarP(&convertKeep, "keep", "k", false, "don't delete the input package")
	flags.BoolVarP(&convertUnsigned, "unsigned", "u", false, "assume input is an unsigned & mangled userdata package")
	flags.BoolVarP(&convertUnwrap, "unwrap", "w", false, "just unwrap the UpdateSignature envelope, if any")
}

func runConvert(cmd *cobra.Command, args []string) error {
	for _, in := range args {
		if err := convertOne(in); err != nil {
			return err
		}
		if !convertKeep && !convertStdout && in != "-" {
			if err := os.Remove(in); err != nil {
				return err
			}
		}
	}
	return nil
}

func convertOne(in string) error {
	f, err := openInput(in)
	if err != nil {
		return err
	}
	defer f.Close()

	opts := unpackager.Options{Unsigned: convertUnsigned, ExtractSignature: convertSig || convertUnwrap}
	result, err := unpackager.Decode(f, opts)
	if err != nil {
		return err
	}

	if convertInfoOnly {
		printHeaderInfo(result)
		return nil
	}

	outPath := "-"
	if !convertStdout {
		outPath = strings.TrimSuffix(in, ".bin") + ".tar.gz"
	}
	out, err := openOutput(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if convertSig && len(result.Signature) > 0 {
		sigOut, err := openOutput(outPath + ".sig")
		if err != nil {
			return err
		}
		defer sigOut.Close()
		if _, err := sigOut.Write(result.Signature); err != nil {
			return err
		}
	}

	_, err = out.Write(result.Body)
	return err
}

func printHeaderInfo(result unpackager.Result) {
	fmt.Printf("variant: %s\n", result.Version)
	if len(result.Fields.Devices) > 0 {
		fmt.Printf("devices: %v\n", result.Fields.Devices)
	} else if result.Fields.Device != 0 {
		fmt.Printf("device: %d\n", result.Fields.Device)
	}
	if result.Fields.SourceRevision != 0 || result.Fields.TargetRevision != 0 {
		fmt.Printf("source_revision: %d\n", result.Fields.SourceRevision)
		fmt.Printf("target_revision: %d\n", result.Fields.TargetRevision)
	}
	if result.Fields.HeaderRevision >= 2 {
		fmt.Printf("platform: %s\n", result.Fields.Platform)
		fmt.Printf("board: %s\n", result.Fields.Board)
	}
	fmt.Printf("body_md5: %s\n", string(result.Fields.BodyMD5Hex[:]))
}
