package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DefaultMaxSizeMB  = 50
	DefaultMaxBackups = 5
	DefaultMaxAgeDays = 30
	DefaultCompress   = true

	timeFormat = "2006-01-02 15:04:05"
)

// Apply sets the global log level from a -v count and points the global
// logger at console (stderr) and, when logFilePath is set, a rotating file.
func Apply(verbosity int, logFilePath string) {
	zerolog.SetGlobalLevel(Level(verbosity))
	log.Logger = zerolog.New(Writer(os.Stderr, logFilePath)).With().Timestamp().Logger()
}

// Level maps a -v count to a zerolog level.
func Level(verbosity int) zerolog.Level {
	switch {
	case verbosity >= 2:
		return zerolog.TraceLevel
	case verbosity == 1:
		return zerolog.DebugLevel
	default:
		return zerolog.InfoLevel
	}
}

// Writer returns a console writer on out, teed to a rotating plain-text file
// when logFilePath is non-empty. If the file's directory cannot be created
// only the console writer is returned.
func Writer(out io.Writer, logFilePath string) io.Writer {
	console := zerolog.ConsoleWriter{Out: out, TimeFormat: timeFormat}
	if logFilePath == "" {
		return console
	}

	if err := ensureLogDir(logFilePath); err != nil {
		l := zerolog.New(console)
		l.Error().Err(err).Str("path", logFilePath).
			Msg("Failed to prepare log directory; logging to console only")
		return console
	}

	file := zerolog.ConsoleWriter{
		Out: &lumberjack.Logger{
			Filename:   logFilePath,
			MaxSize:    DefaultMaxSizeMB,
			MaxBackups: DefaultMaxBackups,
			MaxAge:     DefaultMaxAgeDays,
			Compress:   DefaultCompress,
		},
		TimeFormat: timeFormat,
		NoColor:    true,
	}
	return zerolog.MultiLevelWriter(console, file)
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
