package runtime

import (
	"bytes"
	"testing"
)

// CaptureLog redirects the global logger into a buffer at the given level
// for the duration of a test.  The returned func restores the previous state.
func CaptureLog(t *testing.T, level LogLevel) (*bytes.Buffer, func()) {
	t.Helper()
	buffer := &bytes.Buffer{}
	oldLevel := GetLogLevel()
	oldHandler := globalLogger.handler
	globalLogger.SetOutput(buffer)
	globalLogger.SetLevel(level)
	return buffer, func() {
		globalLogger.SetHandler(oldHandler)
		globalLogger.SetLevel(oldLevel)
	}
}

// QuietTest silences the global logger until the returned func is called.
func QuietTest(t *testing.T) func() {
	t.Helper()
	oldLevel := GetLogLevel()
	globalLogger.SetLevel(LogLevelOff)
	return func() {
		globalLogger.SetLevel(oldLevel)
	}
}
