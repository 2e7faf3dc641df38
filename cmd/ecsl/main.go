package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/panyam/ecsl/cmd/ecsl/commands"
)

func main() {
	envfile := ".env"
	if os.Getenv("ECSL_ENV") == "dev" {
		envfile = ".env.dev"
		logger := slog.New(NewPrettyHandler(os.Stderr, PrettyHandlerOptions{
			SlogOpts: slog.HandlerOptions{
				Level: slog.LevelDebug,
			},
		}))
		slog.SetDefault(logger)
	}

	// The env file is optional
	if err := godotenv.Load(envfile); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("could not load env file", "file", envfile, "error", err)
		}
	} else {
		slog.Debug("loaded env file", "file", envfile)
	}

	commands.Execute()
}
