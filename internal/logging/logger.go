package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/Ishagupta145/mcp-server/internal/config"
)

// New builds a text logger: debug level in dev, info in prod.
func New(env string) *slog.Logger {
	return NewWithWriter(env, os.Stdout)
}

func NewWithWriter(env string, w io.Writer) *slog.Logger {
	logLvl := slog.LevelInfo
	if env == config.EnvDev {
		logLvl = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLvl,
	}))
}
