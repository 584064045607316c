package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ararabots/vsscore/internal/config"
)

// logConfig is where run logs go and how much of it.
type logConfig struct {
	level   slog.Level
	logFile io.WriteCloser // nil logs to stderr
}

// resolveLogConfig picks the log level and file. A flag wins unless it still
// holds its default ("info" for the level, "" for the file), in which case
// log.level and log.file apply. The caller closes logFile.
func resolveLogConfig(flagPath, flagLevel string, cfg *config.Config) (logConfig, error) {
	var lc logConfig
	fromConfig := func(key string) string {
		if cfg == nil {
			return ""
		}
		return config.DefaultSchema().Resolve(cfg, key)
	}

	name := flagLevel
	if name == "" || name == "info" {
		if v := fromConfig("log.level"); v != "" {
			name = v
		}
	}
	level, err := parseLevel(name)
	if err != nil {
		return lc, err
	}
	lc.level = level

	path := flagPath
	if path == "" {
		path = fromConfig("log.file")
	}
	if path == "" {
		return lc, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return lc, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	lc.logFile = f
	return lc, nil
}

var levels = map[string]slog.Level{
	"":      slog.LevelInfo,
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func parseLevel(s string) (slog.Level, error) {
	if l, ok := levels[strings.ToLower(s)]; ok {
		return l, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level: %s", s)
}

// logger writes JSON lines to the log file when there is one, text to
// stderr otherwise.
func (lc logConfig) logger(stderr io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: lc.level}
	if lc.logFile != nil {
		return slog.New(slog.NewJSONHandler(lc.logFile, opts))
	}
	return slog.New(slog.NewTextHandler(stderr, opts))
}
