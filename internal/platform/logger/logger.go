package logger

import (
	"log/slog"
	"os"
)

// New returns the process logger. Services receive it by injection; none
// of them reach for the global default.
func New() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
