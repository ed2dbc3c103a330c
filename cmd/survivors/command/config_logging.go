package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/pixil98/go-errors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggingConfig optionally copies the log to a rotating file.
type LoggingConfig struct {
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

func (c *LoggingConfig) validate() error {
	el := errors.NewErrorList()
	if c.MaxSizeMB < 0 {
		el.Add(fmt.Errorf("logging.max_size_mb must not be negative"))
	}
	if c.MaxBackups < 0 {
		el.Add(fmt.Errorf("logging.max_backups must not be negative"))
	}
	if c.MaxAgeDays < 0 {
		el.Add(fmt.Errorf("logging.max_age_days must not be negative"))
	}
	return el.Err()
}

// install replaces the default logger with one writing to stderr and the
// rotating file. It keeps the level of the current default logger.
func (c *LoggingConfig) install() {
	if c.File == "" {
		return
	}

	file := &lumberjack.Logger{
		Filename:   c.File,
		MaxSize:    c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAgeDays,
	}

	level := slog.LevelInfo
	for _, l := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if slog.Default().Enabled(context.Background(), l) {
			level = l
			break
		}
	}

	h := slog.NewJSONHandler(io.MultiWriter(os.Stderr, file), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(h))
}
