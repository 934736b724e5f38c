package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const defaultLogFile = "agadir.log"

var (
	mu           sync.Mutex
	traceEnabled bool
	logPath      = defaultLogFile
	rotator      *lumberjack.Logger
	logger       = zerolog.New(consoleWriter(os.Stderr)).With().Timestamp().Logger()
)

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
}

// Configure sets the log destination. Empty values fall back to the default
// path. Directories are created automatically when missing. Entries are
// written as JSON to a size-rotated file and mirrored to stderr.
func Configure(path string) {
	mu.Lock()
	defer mu.Unlock()
	if strings.TrimSpace(path) == "" {
		path = defaultLogFile
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "unable to create log directory: %v\n", err)
		path = defaultLogFile
	}
	if rotator != nil {
		_ = rotator.Close()
	}
	logPath = path
	rotator = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
	out := zerolog.MultiLevelWriter(rotator, consoleWriter(os.Stderr))
	logger = zerolog.New(out).With().Timestamp().Logger()
}

// SetOutput replaces every destination with w. Tests use it to capture entries.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if rotator != nil {
		_ = rotator.Close()
		rotator = nil
	}
	logger = zerolog.New(w).With().Timestamp().Logger()
}

// Path reports the configured log file.
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// Logger returns the shared logger for call sites that attach their own fields.
func Logger() *zerolog.Logger {
	mu.Lock()
	l := logger
	mu.Unlock()
	return &l
}

// Error writes err at error level. Nil errors are ignored.
func Error(err error) {
	if err == nil {
		return
	}
	Logger().Error().Err(err).Send()
}

// SetTraceEnabled toggles emission of structured trace entries.
func SetTraceEnabled(enabled bool) {
	mu.Lock()
	traceEnabled = enabled
	mu.Unlock()
}

// TraceEnabled reports whether Trace currently emits entries.
func TraceEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return traceEnabled
}

// Trace appends a structured entry to the shared log when tracing is enabled.
func Trace(event string, payload interface{}) {
	if !TraceEnabled() {
		return
	}
	e := Logger().Log().Str("event", event)
	if payload != nil {
		e = e.Interface("payload", payload)
	}
	e.Msg("trace")
}
