package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rclone/kindletool/internal/archive"
	"github.com/rclone/kindletool/internal/bundle"
	"github.com/rclone/kindletool/internal/devcode"
	"github.com/rclone/kindletool/internal/keystore"
	"github.com/rclone/kindletool/internal/klog"
	"github.com/rclone/kindletool/internal/packager"
)

var log = klog.For("create")

var (
	createDevices          []string
	createKeyPath          string
	createMagic            string
	createSourceRev        uint64
	createTargetRev        uint64
	createHeaderRev        uint32
	createMagic1           uint32
	createMagic2           uint32
	createMinor            uint32
	createCertNum          uint8
	createOptional         uint8
	createCritical         uint8
	createMeta             []string
	createPlatform         string
	createBoard            string
	createKeepIntermediate bool
	createUnsigned         bool
	createUserData         bool
	createLegacyPaths      bool
)

var createCmd = &cobra.Command{
	Use:   "create <type> [options] <dir|file>... [<output>]",
	Short: "Build a firmware update package",
	Long: `Creates a firmware update package. type is one of ota, ota2, recovery,
recovery2, sig. Target devices are given as repeated -d flags, concrete
codes or aliases. Input is a mix of files and directories; a single
".tgz"/".tar.gz" input is assumed already packaged and is used as-is.
Output defaults to standard output when omitted or "-".`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
	flags := createCmd.Flags()
	flags.StringArrayVarP(&createDevices, "device", "d", nil, "target device (concrete code or alias), repeatable")
	flags.StringVarP(&createKeyPath, "key", "k", "", "PEM file containing RSA private key to sign with (default: built-in jailbreak key)")
	flags.StringVarP(&createMagic, "bundle", "b", "", "override the package magic number")
	flags.Uint64VarP(&createSourceRev, "srcrev", "s", 0, "source revision (lowest supported device firmware)")
	flags.Uint64VarP(&createTargetRev, "tgtrev", "t", ^uint64(0), "target revision (highest supported device firmware)")
	flags.Uint32VarP(&createHeaderRev, "hdrrev", "h", 0, "recovery header revision")
	flags.Uint32VarP(&createMagic1, "magic1", "1", 0, "recovery magic number 1")
	flags.Uint32VarP(&createMagic2, "magic2", "2", 0, "recovery magic number 2")
	flags.Uint32VarP(&createMinor, "minor", "m", 0, "recovery minor number")
	flags.Uint8VarP(&createCertNum, "cert", "c", 0, "certificate number (OTA V2 only)")
	flags.Uint8VarP(&createOptional, "opt", "o", 0, "one-byte optional data (OTA V1 only)")
	flags.Uint8VarP(&createCritical, "crit", "r", 0, "one-byte critical data (OTA V2 only)")
	flags.StringArrayVarP(&createMeta, "meta", "x", nil, "KEY=VALUE metastring (OTA V2 only), repeatable")
	flags.StringVarP(&createPlatform, "platform", "p", "unspecified", "recovery platform: unspecified, mario, luigi, banjo, yoshi, yoshime-p, yoshime, or wario (recovery2/recovery header rev 2 only)")
	flags.StringVarP(&createBoard, "board", "B", "unspecified", "recovery board: unspecified, tequila, or whitney (recovery2/recovery header rev 2 only)")
	flags.BoolVarP(&createKeepIntermediate, "archive", "a", false, "keep the intermediate archive")
	flags.BoolVarP(&createUnsigned, "unsigned", "u", false, "build an unsigned & mangled debug package")
	flags.BoolVarP(&createUserData, "userdata", "U", false, "build a userdata package (type must be sig)")
	flags.BoolVarP(&createLegacyPaths, "legacy", "C", false, "store archive paths relative to the input root, instead of as given")
}

func runCreate(cmd *cobra.Command, args []string) error {
	typeName := args[0]
	rest := args[1:]
	inputs, outPath := rest, "-"
	if len(rest) > 1 {
		inputs, outPath = rest[:len(rest)-1], rest[len(rest)-1]
	}

	version, err := bundleVersionForType(typeName)
	if err != nil {
		return err
	}
	if createUserData {
		if version != bundle.UpdateSignature {
			return errors.New("kindletool: -U/--userdata can only be used with the sig update type")
		}
		version = bundle.UserDataPackage
	}

	var devices []uint16
	for _, d := range createDevices {
		codes, err := devcode.Resolve(d, cfg.AllowUnknownDeviceCodes)
		if err != nil {
			return err
		}
		for _, c := range codes {
			devices = append(devices, uint16(c))
		}
	}

	var metastrings []bundle.Metastring
	for _, m := range createMeta {
		key, value, ok := splitMeta(m)
		if !ok {
			return errors.Errorf("kindletool: invalid -x value %q, want KEY=VALUE", m)
		}
		metastrings = append(metastrings, bundle.Metastring{Key: key, Value: value})
	}

	platform, err := devcode.ParsePlatform(createPlatform)
	if err != nil {
		return err
	}
	board, err := devcode.ParseBoard(createBoard)
	if err != nil {
		return err
	}

	magic := createMagic
	if magic == "" {
		magic = defaultMagicForType(typeName)
	}

	info := bundle.UpdateInformation{
		Version:           version,
		Magic:             magic,
		KeyPath:           createKeyPath,
		SourceRevision:    createSourceRev,
		TargetRevision:    createTargetRev,
		Magic1:            createMagic1,
		Magic2:            createMagic2,
		MinorVersion:      createMinor,
		Devices:           devices,
		Platform:          platform,
		Board:             board,
		HeaderRevision:    createHeaderRev,
		CertificateNumber: createCertNum,
		Critical:          createCritical != 0,
		Optional:          createOptional != 0,
		Metastrings:       metastrings,
		Unsigned:          createUnsigned,
	}

	keys, err := loadKeys(createKeyPath)
	if err != nil {
		return err
	}

	body, err := buildBody(version, inputs, keys)
	if err != nil {
		return err
	}

	out, err := openOutput(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	log.Debugf("building %s package (%d devices, %d-byte body)", version, len(devices), len(body))
	counted := &countingWriter{w: out}
	if err := packager.Build(counted, body, info, keys); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", humanize.Bytes(uint64(counted.n)), counted.n)
	return nil
}

// countingWriter tracks bytes written so the final progress line can report
// a humanized package size, the way the teacher's torrent backend command
// reports transfer sizes.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func buildBody(version bundle.Version, inputs []string, keys *keystore.KeyStore) ([]byte, error) {
	if version == bundle.UserDataPackage {
		if len(inputs) != 1 {
			return nil, errors.New("kindletool: userdata packages take exactly one gzip input")
		}
		return os.ReadFile(inputs[0])
	}
	if len(inputs) == 1 && archive.IsPrebundled(inputs[0]) {
		log.Debugf("input %q is already bundled, skipping stage A", inputs[0])
		return os.ReadFile(inputs[0])
	}

	b := archive.NewBuilder(keys, createLegacyPaths)
	for _, in := range inputs {
		if err := b.AddPath(in); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if err := b.Build(&buf); err != nil {
		return nil, err
	}
	if createKeepIntermediate {
		if err := os.WriteFile(inputs[0]+".tar.gz", buf.Bytes(), 0o644); err != nil {
			return nil, errors.Wrap(err, "kindletool: failed to keep intermediate archive")
		}
	}
	return buf.Bytes(), nil
}

func loadKeys(path string) (*keystore.KeyStore, error) {
	if path == "" {
		return keystore.Default()
	}
	return keystore.LoadPEM(path)
}

func bundleVersionForType(typeName string) (bundle.Version, error) {
	switch typeName {
	case "ota":
		return bundle.OTAUpdateV1, nil
	case "ota2":
		return bundle.OTAUpdateV2, nil
	case "recovery":
		return bundle.RecoveryUpdate, nil
	case "recovery2":
		return bundle.RecoveryUpdateV2, nil
	case "sig":
		return bundle.UpdateSignature, nil
	default:
		return bundle.Unknown, errors.Errorf("kindletool: unknown package type %q (want ota, ota2, recovery, recovery2, or sig)", typeName)
	}
}

func defaultMagicForType(typeName string) string {
	switch typeName {
	case "ota":
		return "FD03"
	case "ota2":
		return "FL01"
	case "recovery":
		return "FB01"
	case "recovery2":
		return "FB03"
	case "sig":
		return "SP01"
	default:
		return ""
	}
}
