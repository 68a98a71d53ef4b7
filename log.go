package tindex

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Log is the package-level logger. Library callers get silence by default;
// the CLI front end redirects it to stderr and raises the level with
// --verbose.
var Log = logrus.New()

func init() {
	Log.SetOutput(io.Discard)
}
