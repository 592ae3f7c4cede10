// Package common provides the logging, error and shared-field primitives used across
// the pipeline packages (upstream, storage, fill, pipeline, ...).
package common

import (
	"bytes"
	"os"

	"github.com/sirupsen/logrus"
)

// OutputSplitter routes error-level log lines to stderr and everything else to
// stdout, so container log collectors can treat the two streams differently.
type OutputSplitter struct{}

func (s *OutputSplitter) Write(p []byte) (int, error) {
	if bytes.Contains(p, []byte("level=error")) {
		return os.Stderr.Write(p)
	}
	return os.Stdout.Write(p)
}

// Logger is the process-wide logger. Individual components should prefer
// NewContextLogger to attach their own fields rather than mutating this value.
var Logger = logrus.New()

func init() {
	Logger.SetOutput(&OutputSplitter{})
}
