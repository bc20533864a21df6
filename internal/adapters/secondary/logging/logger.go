// Package logging builds the zerolog logger used across slidedeck.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
)

// Logger owns the root zerolog logger and the optional log file behind it
type Logger struct {
	zlog zerolog.Logger
	file *os.File
}

// New creates a logger writing to out and, when configured, to cfg.File.
// Console output is human readable unless JSONFormat is set.
func New(cfg entities.LoggingConfig, out io.Writer) (*Logger, error) {
	if out == nil {
		out = os.Stderr
	}

	var console io.Writer = out
	if !cfg.JSONFormat {
		console = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: "15:04:05",
		}
	}

	writers := []io.Writer{console}

	var file *os.File
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) // #nosec G304 - path comes from validated config
		if err != nil {
			return nil, fmt.Errorf("opening log file %s: %w", cfg.File, err)
		}
		file = f
		writers = append(writers, f)
	}

	zlog := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(ParseLevel(cfg)).
		With().
		Timestamp().
		Str("app", "slidedeck").
		Logger()

	return &Logger{zlog: zlog, file: file}, nil
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	return &Logger{zlog: zerolog.Nop()}
}

// ParseLevel maps the configured level onto zerolog; Verbose forces debug
func ParseLevel(cfg entities.LoggingConfig) zerolog.Level {
	if cfg.Verbose {
		return zerolog.DebugLevel
	}

	switch cfg.GetLevel() {
	case entities.LogLevelDebug:
		return zerolog.DebugLevel
	case entities.LogLevelWarn:
		return zerolog.WarnLevel
	case entities.LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Component returns a child logger tagged with the component name
func (l *Logger) Component(name string) zerolog.Logger {
	return l.zlog.With().Str("component", name).Logger()
}

// Zerolog returns the root logger
func (l *Logger) Zerolog() *zerolog.Logger {
	return &l.zlog
}

// Close closes the log file, if any
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

