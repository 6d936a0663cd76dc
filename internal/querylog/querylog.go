// Package querylog bridges pgx statement tracing to zerolog.
package querylog

import (
	"context"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// Logger implements tracelog.Logger on top of a zerolog.Logger.
//
// pgx reports every completed statement at its Info level; those entries are
// written at StatementLevel so they can be kept out of the way of the
// application's own info logs. Warnings and errors keep their severity.
type Logger struct {
	log            zerolog.Logger
	StatementLevel zerolog.Level
}

// New returns a Logger writing statements at the given level.
func New(log zerolog.Logger, statementLevel zerolog.Level) *Logger {
	return &Logger{log: log, StatementLevel: statementLevel}
}

// Log implements tracelog.Logger.
func (l *Logger) Log(ctx context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	l.log.WithLevel(l.mapLevel(level)).Fields(data).Msg(msg)
}

func (l *Logger) mapLevel(level tracelog.LogLevel) zerolog.Level {
	switch level {
	case tracelog.LogLevelTrace:
		return zerolog.TraceLevel
	case tracelog.LogLevelDebug:
		return zerolog.DebugLevel
	case tracelog.LogLevelInfo:
		return l.StatementLevel
	case tracelog.LogLevelWarn:
		return zerolog.WarnLevel
	case tracelog.LogLevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.NoLevel
	}
}

// NewTracer returns a pgx tracer that sends statement traces to log.
// Assign it to pgx.ConnConfig.Tracer.
func NewTracer(log zerolog.Logger, statementLevel zerolog.Level) *tracelog.TraceLog {
	return &tracelog.TraceLog{
		Logger:   New(log, statementLevel),
		LogLevel: tracelog.LogLevelInfo,
	}
}
