// Package diag provides structured diagnostic logging for the VM and
// collector, in the shape of funxy/cmd/lsp's use of the standard log
// package, with dustin/go-humanize added for human-scale object counts.
package diag

import (
	"log"
	"os"

	"github.com/dustin/go-humanize"
)

// Logger wraps a standard library *log.Logger. The zero Logger is not
// usable; use New or Default.
type Logger struct {
	*log.Logger
}

// Default returns a Logger writing to stderr with a microsecond timestamp
// prefix, matching funxy/cmd/lsp's server logger configuration.
func Default() *Logger {
	return &Logger{Logger: log.New(os.Stderr, "rlox: ", log.Lmicroseconds)}
}

// New returns a Logger writing to w with the given message prefix.
func New(w *os.File, prefix string) *Logger {
	return &Logger{Logger: log.New(w, prefix, log.Lmicroseconds)}
}

// Counts logs a labeled object count, rendering large counts with
// thousands separators via go-humanize — purely cosmetic, never part of
// any observable VM or collector behavior.
func (l *Logger) Counts(label string, n int) {
	l.Printf("%s: %s", label, humanize.Comma(int64(n)))
}
