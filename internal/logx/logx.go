// Package logx is a tiny stderr logging helper shared across the pipeline
// stages, generalizing the prefixed fmt.Fprintf(os.Stderr, ...) idiom the
// teacher repo repeats at every call site.
package logx

import (
	"fmt"
	"os"
	"sync"
	"time"
)

var mu sync.Mutex

// Logger prefixes every line with a component tag, e.g. "[device]".
type Logger struct {
	prefix string
}

// New returns a Logger tagged with the given component name.
func New(component string) Logger {
	return Logger{prefix: "[" + component + "] "}
}

func (l Logger) line(level, format string, args ...any) string {
	ts := time.Now().Format("15:04:05.000")
	return fmt.Sprintf("%s %s%s: %s\n", ts, l.prefix, level, fmt.Sprintf(format, args...))
}

// Infof logs an informational line.
func (l Logger) Infof(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprint(os.Stderr, l.line("info", format, args...))
}

// Warnf logs a warning line. Used for CRB overrun/underrun and recoverable
// ALSA/device errors per the error handling design.
func (l Logger) Warnf(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprint(os.Stderr, l.line("warn", format, args...))
}

// Errorf logs an error line.
func (l Logger) Errorf(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprint(os.Stderr, l.line("error", format, args...))
}
