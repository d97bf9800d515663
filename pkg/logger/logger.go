package logger

import (
	"io"
	"log/syslog"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger wraps zerolog.Logger with additional functionality
type Logger struct {
	zerolog.Logger
}

// Config holds logger configuration
type Config struct {
	Level      string
	Format     string // "console" or "json"
	TimeFormat string
	Syslog     bool   // also write to the system log facility
	SyslogTag  string // syslog program tag, defaults to "adwareguard"
	Verbose    bool   // tee to stdout even when syslog is the primary sink
}

// New creates a new logger with the given configuration.
//
// With Syslog enabled the system log is the primary sink; stdout is added
// only in verbose mode. If the syslog daemon cannot be reached the logger
// falls back to stderr rather than dropping events.
func New(cfg Config) *Logger {
	// Enable stack traces on errors
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	// Set time format
	if cfg.TimeFormat != "" {
		zerolog.TimeFieldFormat = cfg.TimeFormat
	} else {
		zerolog.TimeFieldFormat = time.RFC3339
	}

	// Parse level
	level := parseLevel(cfg.Level)

	var writers []io.Writer
	if cfg.Syslog {
		tag := cfg.SyslogTag
		if tag == "" {
			tag = "adwareguard"
		}
		if sw, err := syslog.New(syslog.LOG_ALERT|syslog.LOG_USER, tag); err == nil {
			writers = append(writers, zerolog.SyslogLevelWriter(sw))
		} else {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:        os.Stderr,
				TimeFormat: cfg.TimeFormat,
			})
		}
	}
	if !cfg.Syslog || cfg.Verbose {
		if cfg.Format == "console" {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:        os.Stdout,
				TimeFormat: cfg.TimeFormat,
			})
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{Logger: logger}
}

// NewNop creates a logger that discards everything, for tests
func NewNop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// WithComponent returns a new logger with the component field set
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.With().Str("component", component).Logger(),
	}
}

// WithRunID returns a new logger with the scan run ID field set
func (l *Logger) WithRunID(runID string) *Logger {
	return &Logger{
		Logger: l.With().Str("run_id", runID).Logger(),
	}
}

// WithSourceID returns a new logger with the source ID field set
func (l *Logger) WithSourceID(sourceID string) *Logger {
	return &Logger{
		Logger: l.With().Str("source_id", sourceID).Logger(),
	}
}

// parseLevel converts a string level to zerolog.Level
func parseLevel(level string) zerolog.Level {
	switch level {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}
