// Package logging configures the process-wide zerolog logger. The
// console owns the terminal, so logs go to a file under the user's
// state directory instead of stdout.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Setup opens the log file and returns a logger plus a close func.
// When the state directory is unusable the logger discards output
// rather than failing the whole console over diagnostics.
func Setup(level zerolog.Level) (zerolog.Logger, func()) {
	w, closer := openLogFile()
	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return logger, closer
}

// openLogFile opens ~/.local/state/auction-console/console.log for
// appending, creating directories as needed.
func openLogFile() (io.Writer, func()) {
	home, err := os.UserHomeDir()
	if err != nil {
		return io.Discard, func() {}
	}

	dir := filepath.Join(home, ".local", "state", "auction-console")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return io.Discard, func() {}
	}

	path := filepath.Join(dir, "console.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "auction-console: cannot open log file %s: %v\n", path, err)
		return io.Discard, func() {}
	}

	return f, func() { f.Close() }
}
