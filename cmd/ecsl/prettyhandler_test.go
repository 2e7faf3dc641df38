package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/panyam/ecsl/runtime"
	"github.com/stretchr/testify/assert"
)

func TestPrettyHandler(t *testing.T) {
	color.NoColor = true
	out := &bytes.Buffer{}
	logger := slog.New(NewPrettyHandler(out, PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{Level: slog.LevelInfo},
	}))

	logger.Debug("hidden")
	logger.With("file", "a.ecsl").Warn("could not load", "error", "boom")

	line := out.String()
	assert.NotContains(t, line, "hidden")
	assert.Contains(t, line, "WARN: could not load file=a.ecsl error=boom")
}

func TestPrettyHandlerGroups(t *testing.T) {
	color.NoColor = true
	out := &bytes.Buffer{}
	logger := slog.New(NewPrettyHandler(out, PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{Level: slog.LevelInfo},
	}))

	logger.With("file", "a.ecsl").WithGroup("tick").With("n", 2).Info("ran", "systems", 3)
	assert.Contains(t, out.String(), "INFO: ran file=a.ecsl tick.n=2 tick.systems=3")
}

// Runtime logs render through the pretty handler too.
func TestPrettyHandlerRendersRuntimeLogs(t *testing.T) {
	color.NoColor = true
	out := &bytes.Buffer{}
	lg := runtime.NewLogger(nil, runtime.LogLevelDebug)
	lg.SetHandler(NewPrettyHandler(out, PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{Level: slog.LevelDebug},
	}))

	lg.Warn("system %s failed", "move")
	assert.Contains(t, out.String(), "WARN: system move failed")
}
