package tui

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/natefinch/lumberjack.v2"
)

// GetLogFilePath returns the path to the log file.
// If STACKED_LOG_FILE is set, uses that path.
// Otherwise, uses ~/.stacked/logs/stacked.log
func GetLogFilePath() string {
	if customPath := os.Getenv("STACKED_LOG_FILE"); customPath != "" {
		return customPath
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "stacked.log"
	}

	return filepath.Join(homeDir, ".stacked", "logs", "stacked.log")
}

// newRotatingWriter creates a lumberjack logger, with limits overridable from the environment
func newRotatingWriter(logFilePath string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    envInt("STACKED_LOG_MAX_SIZE", 1, 1),
		MaxBackups: envInt("STACKED_LOG_MAX_BACKUPS", 2, 0),
		MaxAge:     envInt("STACKED_LOG_MAX_AGE", 30, 1),
		Compress:   false,
	}
}

// envInt reads a positive integer from name, returning def when unset or below lowest
func envInt(name string, def, lowest int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lowest {
		return def
	}
	return n
}
