// Package log provides logging utilities including debug mode with render profiling.
// Enable debug mode by setting APIARY_DEBUG=1 environment variable.
package log

import (
	"io"
	stdlog "log"
	"os"
	"path/filepath"
)

var (
	InfoLog    *stdlog.Logger
	WarningLog *stdlog.Logger
	ErrorLog   *stdlog.Logger

	logFile *os.File
)

var logFileName = filepath.Join(os.TempDir(), "apiary.log")

// Initialize sets up the package-level loggers, appending to the log file
// in the temp directory, and then calls InitDebug. With daemon true the
// loggers write to that file only; with daemon false every line is also
// echoed to stderr.
func Initialize(daemon bool) {
	f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		// Fall back to stderr-only logging if the file can't be opened.
		InfoLog = stdlog.New(os.Stderr, "INFO: ", stdlog.Ldate|stdlog.Ltime)
		WarningLog = stdlog.New(os.Stderr, "WARN: ", stdlog.Ldate|stdlog.Ltime)
		ErrorLog = stdlog.New(os.Stderr, "ERROR: ", stdlog.Ldate|stdlog.Ltime)
		return
	}
	logFile = f

	var out io.Writer = f
	if !daemon {
		out = io.MultiWriter(f, os.Stderr)
	}

	InfoLog = stdlog.New(out, "INFO: ", stdlog.Ldate|stdlog.Ltime)
	WarningLog = stdlog.New(out, "WARN: ", stdlog.Ldate|stdlog.Ltime)
	ErrorLog = stdlog.New(out, "ERROR: ", stdlog.Ldate|stdlog.Ltime)

	InitDebug()
}

// Close flushes and closes the log file.
func Close() {
	CloseDebug()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// Ensure the package is always usable even if Initialize was never called
// (e.g. in unit tests that import other packages transitively).
func init() {
	InfoLog = stdlog.New(io.Discard, "INFO: ", 0)
	WarningLog = stdlog.New(io.Discard, "WARN: ", 0)
	ErrorLog = stdlog.New(io.Discard, "ERROR: ", 0)
}
