package domain

import (
	"fmt"
	"log/slog"
	"strings"
)

// LogLevel is the verbosity threshold of a session. Higher values are
// more verbose; a line is shown when its level is <= the session level.
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarning
	LogLevelInfo
	LogLevelVerbose
	LogLevelDebug
)

// DefaultLogLevel is used when the configuration does not set one.
const DefaultLogLevel = LogLevelVerbose

var logLevelNames = map[LogLevel]string{
	LogLevelError:   "error",
	LogLevelWarning: "warning",
	LogLevelInfo:    "info",
	LogLevelVerbose: "verbose",
	LogLevelDebug:   "debug",
}

// LogLevels lists every level from least to most verbose.
func LogLevels() []LogLevel {
	return []LogLevel{LogLevelError, LogLevelWarning, LogLevelInfo, LogLevelVerbose, LogLevelDebug}
}

func (l LogLevel) String() string {
	if name, ok := logLevelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Enabled reports whether a line at level should be shown under l.
func (l LogLevel) Enabled(level LogLevel) bool {
	return level <= l
}

// SlogLevel maps the level onto the closest slog threshold.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelError:
		return slog.LevelError
	case LogLevelWarning:
		return slog.LevelWarn
	case LogLevelInfo, LogLevelVerbose:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// LogLevelFromSlog maps a slog record level onto a LogLevel.
func LogLevelFromSlog(level slog.Level) LogLevel {
	switch {
	case level >= slog.LevelError:
		return LogLevelError
	case level >= slog.LevelWarn:
		return LogLevelWarning
	case level >= slog.LevelInfo:
		return LogLevelInfo
	default:
		return LogLevelDebug
	}
}

// ParseLogLevel accepts a level name (case-insensitive). "warn" is an alias
// for "warning" and the empty string yields DefaultLogLevel.
func ParseLogLevel(s string) (LogLevel, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "":
		return DefaultLogLevel, nil
	case "warn":
		return LogLevelWarning, nil
	}
	for level, n := range logLevelNames {
		if n == name {
			return level, nil
		}
	}
	return DefaultLogLevel, fmt.Errorf("%w: %q", ErrInvalidLogLevel, s)
}
