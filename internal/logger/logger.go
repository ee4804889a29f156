// Package logger configures the process-wide zerolog logger used by the binaries.
// Library packages receive a zerolog.Logger explicitly and never read the global one.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const milliTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Init sets the global level and output. An unknown level falls back to info,
// pretty selects the human readable console writer instead of JSON lines.
func Init(level string, pretty bool) zerolog.Logger {
	return InitWriter(os.Stderr, level, pretty)
}

// InitWriter is Init with a custom destination.
func InitWriter(out io.Writer, level string, pretty bool) zerolog.Logger {
	zerolog.TimeFieldFormat = milliTimeFormat
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }

	const callerWidth = 24
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		path := fmt.Sprintf("%s:%d", filepath.Base(file), line)
		if len(path) >= callerWidth {
			return path[len(path)-callerWidth:]
		}
		return path + strings.Repeat(" ", callerWidth-len(path))
	}

	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)

	ctx := zerolog.New(out).With().Timestamp()
	if pretty {
		ctx = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: milliTimeFormat}).With().Timestamp().Caller()
	}
	log.Logger = ctx.Logger()

	log.Debug().Str("level", parsed.String()).Bool("pretty", pretty).Msg("logger initialized")
	return log.Logger
}

// For returns the global logger tagged with the component name.
func For(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}
