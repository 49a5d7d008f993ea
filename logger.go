package netprobe

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the package-level logger every engine reports through. Tests and
// embedding applications may swap it for a configured instance, mirroring
// the ambient logger the teacher's scanner constructors accept.
var Logger = logrus.StandardLogger()

// ConfigureLogger applies a level and text/json format to Logger, the same
// two knobs the teacher's LoggerManager exposes (minus its file-rotation
// machinery, which a probing library embedded in another process has no
// business owning — the embedding application picks the output writer).
func ConfigureLogger(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("netprobe: invalid log level %q: %w", level, err)
	}
	Logger.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "json":
		Logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02 15:04:05.000"})
	case "text", "":
		Logger.SetFormatter(&logrus.TextFormatter{TimestampFormat: "2006-01-02 15:04:05.000", FullTimestamp: true})
	default:
		return fmt.Errorf("netprobe: unsupported log format %q", format)
	}
	return nil
}
