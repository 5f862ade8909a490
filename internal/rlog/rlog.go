// Package rlog provides simple leveled logging over the standard log
// package. Grounded in ClusterCockpit-cc-backend's pkg/log (per-level
// writers and *log.Logger instances, a package-level SetLevel gate),
// trimmed to the four levels this service actually uses and extended with
// TTY-aware ANSI coloring via mattn/go-isatty, matching the teacher's own
// go.mod dependency on that package for terminal-aware output.
package rlog

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mattn/go-isatty"
)

// Level orders the severities this package emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

var levelColors = map[Level]string{
	LevelDebug: "\x1b[90m", // bright black
	LevelInfo:  "\x1b[36m", // cyan
	LevelWarn:  "\x1b[33m", // yellow
	LevelError: "\x1b[31m", // red
}

const colorReset = "\x1b[0m"

var (
	minLevel = LevelInfo
	out      io.Writer = os.Stderr
	colorize           = isatty.IsTerminal(os.Stderr.Fd())
	std                = log.New(out, "", log.LstdFlags)
)

// SetLevel sets the minimum level that will be emitted; messages below it
// are dropped cheaply before formatting.
func SetLevel(l Level) { minLevel = l }

// SetOutput redirects logging output and re-evaluates whether the new
// destination is a terminal for coloring purposes.
func SetOutput(w io.Writer) {
	out = w
	std = log.New(out, "", log.LstdFlags)
	if f, ok := w.(*os.File); ok {
		colorize = isatty.IsTerminal(f.Fd())
	} else {
		colorize = false
	}
}

func logf(l Level, format string, args ...interface{}) {
	if l < minLevel {
		return
	}
	msg := fmt.Sprintf(format, args...)
	tag := levelNames[l]
	if colorize {
		std.Output(3, fmt.Sprintf("%s[%s]%s %s", levelColors[l], tag, colorReset, msg))
		return
	}
	std.Output(3, fmt.Sprintf("[%s] %s", tag, msg))
}

func Debugf(format string, args ...interface{}) { logf(LevelDebug, format, args...) }
func Infof(format string, args ...interface{})  { logf(LevelInfo, format, args...) }
func Warnf(format string, args ...interface{})  { logf(LevelWarn, format, args...) }
func Errorf(format string, args ...interface{}) { logf(LevelError, format, args...) }
