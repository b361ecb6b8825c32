// Package logger builds the slog loggers used across the tool: colored tint
// output on a terminal, plain key=value text otherwise.
package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
)

var isTerm = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

// New returns a stderr logger tagged with component.
func New(component string) *slog.Logger {
	var h slog.Handler
	if isTerm {
		h = newTerminalHandler(os.Stderr)
	} else {
		h = newTextHandler(os.Stderr)
	}
	return slog.New(h).With(slog.String("component", component))
}

// NewText returns a plain text logger writing to w, for tests and files.
func NewText(w io.Writer, component string) *slog.Logger {
	return slog.New(newTextHandler(w)).With(slog.String("component", component))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
