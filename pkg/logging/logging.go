// Package logging builds the process wide structured logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"

	"github.com/Manu343726/rvdb/pkg/utils"
)

// Options configures the logger
type Options struct {
	// Minimum level of the console handler
	Level slog.Level
	// Console receives human readable records. Defaults to stderr.
	Console io.Writer
	// File, when not empty, receives every record at debug level and above as JSON lines
	File string
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ParseLevel parses debug, info, warn or error (case insensitive)
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, utils.MakeError(err, "log level '%v'", name)
	}
	return level, nil
}

// New creates a logger fanning records out to the console and, optionally,
// a JSON log file. The returned closer releases the file.
func New(options Options) (*slog.Logger, io.Closer, error) {
	if options.Console == nil {
		options.Console = os.Stderr
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(options.Console, &slog.HandlerOptions{Level: options.Level}),
	}

	var closer io.Closer = nopCloser{}
	if options.File != "" {
		file, err := os.OpenFile(options.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, err
		}
		handlers = append(handlers, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}))
		closer = file
	}

	return slog.New(slogmulti.Fanout(handlers...)), closer, nil
}
