// Package klog provides the package-level structured logger shared across
// kindletool's internal packages.
package klog

import (
	"os"

	"github.com/sirupsen/logrus"
)

var base = logrus.New()

func init() {
	base.SetOutput(os.Stderr)
	base.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
}

// For returns a logger entry tagged with the calling package's name, used
// as the first argument to Debugf/Warnf/etc. on the hot paths of each
// stage (bytes scrambled, header fields parsed, envelope wrapped).
func For(component string) *logrus.Entry {
	return base.WithField("component", component)
}

// SetLevel adjusts verbosity; the CLI wires this to a future -v flag.
func SetLevel(level logrus.Level) {
	base.SetLevel(level)
}
