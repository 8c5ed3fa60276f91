package config

import (
	"log/slog"
	"os"
	"strings"
)

// LogLevelEnv overrides the default log level when --debug is not given.
const LogLevelEnv = "JARMONBUILD_LOG_LEVEL"

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLogLevel resolves the effective level: debug wins, then the
// environment, then info.
func ParseLogLevel(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	if lvl, ok := logLevels[strings.ToLower(strings.TrimSpace(os.Getenv(LogLevelEnv)))]; ok {
		return lvl
	}
	return slog.LevelInfo
}
