package simplefs

import "github.com/sirupsen/logrus"

// Logger is the structured diagnostic logger for the simplefs package. It
// never carries the byte-exact superblock/inode/close reports required by
// spec.md — those go straight to fmt.Fprintf on their own io.Writer. This is
// purely for operator-facing diagnostics: mount summaries, allocator
// exhaustion warnings, and the like.
//
// Callers that embed simplefs in a larger program can replace this with
// their own *logrus.Logger or override its output/level.
var Logger logrus.FieldLogger = logrus.StandardLogger()
