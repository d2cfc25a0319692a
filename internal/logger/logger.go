package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/Tomlord1122/portfolio-backend/internal/config"
)

// New returns a text logger for local runs and a JSON logger elsewhere.
func New(env string) *slog.Logger {
	return newWithWriter(env, os.Stdout)
}

func newWithWriter(env string, w io.Writer) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvLocal:
		log = slog.New(
			slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case config.EnvDev:
		log = slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	}
	return log.With(slog.String("env", env))
}
