package lfs

import "github.com/rubyist/tracerx"

// Logger receives internal diagnostic tracing. It is never required for
// correct operation; the library falls back to the tracerx-backed
// defaultLogger.
type Logger interface {
	Log(msg string, kv ...interface{})
}

type noopLogger struct{}

// Log implements Logger.
func (noopLogger) Log(string, ...interface{}) {}

type tracerxLogger struct{}

// Log implements Logger by formatting kv as trailing key=value pairs and
// forwarding to tracerx, the same library and style the reference tool
// uses for its own trace points.
func (tracerxLogger) Log(msg string, kv ...interface{}) {
	format := msg
	for i := 0; i < len(kv); i += 2 {
		format += " %s=%v"
	}
	tracerx.Printf(format, kv...)
}

func init() {
	tracerx.DefaultKey = "GIT"
	tracerx.Prefix = "trace git2-lfs: "
}

// defaultLogger is used by any component constructed without an explicit
// Logger.
var defaultLogger Logger = tracerxLogger{}
