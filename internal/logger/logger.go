// Package logger настраивает slog: пишем одновременно в stdout (для
// docker logs) и в <dir>/bot.log.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Setup возвращает логгер и функцию закрытия файла. Debug включает
// уровень DEBUG и source-атрибуты.
func Setup(dir string, debug bool) (*slog.Logger, func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}

	f, err := os.OpenFile(filepath.Join(dir, "bot.log"),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	h := slog.NewTextHandler(io.MultiWriter(os.Stdout, f), &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	log := slog.New(h)
	slog.SetDefault(log)

	return log, f.Close, nil
}
