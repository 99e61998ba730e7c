package logging

import (
	"log/slog"
	"os"
)

func stdoutHandler() slog.Handler {
	return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
}

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	slog.SetDefault(slog.New(stdoutHandler()))
}

// UseDatabase keeps stdout output and additionally persists ERROR+ records
// through pg.
func UseDatabase(pg *PGHandler) {
	slog.SetDefault(slog.New(NewMultiHandler(stdoutHandler(), pg)))
}
