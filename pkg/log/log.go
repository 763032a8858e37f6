// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/rewritesync/pkg/classify"
	"github.com/walteh/rewritesync/pkg/source"
	"github.com/walteh/rewritesync/pkg/status"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 35 // Base width for filename
	typeWidth   = 8  // Width for representation
	statusWidth = 15 // Width for status text
)

// 📦 RunOperation describes the run being logged
type RunOperation struct {
	Mode      status.Mode
	Root      string
	Changeset string
}

// 🎯 Logger mirrors per-file console lines into zerolog
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	mu        sync.Mutex
	currentOp *RunOperation
	entries   int
	formatter status.Formatter
}

// 🏭 New creates a new logger writing console lines to console and
// structured events to zlog
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:      zlog,
		console:   console,
		mu:        sync.Mutex{},
		formatter: ConsoleFormatter{},
	}
}

// 🔧 WithFormatter swaps the formatter used for change lines and errors
func (l *Logger) WithFormatter(f status.Formatter) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.formatter = f
	return l
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 🎨 ConsoleFormatter renders aligned, colored change lines
type ConsoleFormatter struct{}

var _ status.Formatter = ConsoleFormatter{}

// 📝 FormatEntry formats a change for display
func (ConsoleFormatter) FormatEntry(mode status.Mode, e status.Entry) string {
	// Determine symbol and color
	var symbol rune
	var symbolColor color.Attribute
	switch e.Kind {
	case classify.Deleted:
		symbol = '✗'
		symbolColor = color.FgRed
	case classify.Generated:
		symbol = '✓'
		symbolColor = color.FgGreen
	case classify.Moved:
		symbol = '→'
		symbolColor = color.FgMagenta
	default:
		symbol = '⟳'
		symbolColor = color.FgBlue
	}

	// Format representation with color
	var typeColor color.Attribute
	switch e.Representation {
	case source.KindText:
		typeColor = color.FgCyan
	case source.KindRemote:
		typeColor = color.FgYellow
	default:
		typeColor = color.FgBlue
	}

	path := e.Path
	if e.Kind == classify.Moved && e.From != "" {
		path = e.From + " → " + e.Path
	}

	state := e.Kind.String()
	if mode == status.ModeDryRun {
		state = "would be " + state
	}

	line := fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, path),
		color.New(typeColor).Sprint(fmt.Sprintf("%-*s", typeWidth, e.Representation)),
		fmt.Sprintf("%-*s", statusWidth, state))

	if !e.Stats.IsZero() {
		line += fmt.Sprintf(" %s %s",
			color.New(color.FgGreen).Sprintf("+%d", e.Stats.Added),
			color.New(color.FgRed).Sprintf("-%d", e.Stats.Removed))
	}
	return line
}

// 📝 FormatError formats an error in red
func (ConsoleFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return "❌ " + color.New(color.FgRed).Sprint(err.Error())
}

// 📝 LogEntry logs a change
func (l *Logger) LogEntry(ctx context.Context, mode status.Mode, e status.Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.printEntry(mode, e, l.formatter.FormatEntry(mode, e))
}

// printEntry writes a pre-formatted line and its zerolog event; l.mu must be held
func (l *Logger) printEntry(mode status.Mode, e status.Entry, line string) {
	l.entries++

	fmt.Fprintln(l.console, line)

	l.zlog.Info().
		Str("file", e.Path).
		Str("from", e.From).
		Str("kind", e.Kind.String()).
		Str("representation", e.Representation.String()).
		Str("mode", mode.String()).
		Int("added", e.Stats.Added).
		Int("removed", e.Stats.Removed).
		Msg("file change")
}

// 📝 LogReaped logs a directory removed because it became empty
func (l *Logger) LogReaped(ctx context.Context, dir string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.console, "%*s%s %s\n", fileIndent, "",
		color.New(color.Faint).Sprint("⌫"),
		color.New(color.Faint).Sprint(dir+"/"))

	l.zlog.Info().Str("dir", dir).Msg("removed empty directory")
}

// 📝 LogReport logs every entry and reaped directory of a report
func (l *Logger) LogReport(ctx context.Context, r *status.Report) {
	l.mu.Lock()
	lines := r.Lines(l.formatter)
	for i, e := range r.Entries {
		l.printEntry(r.Mode, e, lines[i])
	}
	l.mu.Unlock()

	for _, dir := range r.Reaped {
		l.LogReaped(ctx, dir)
	}
}

// 📝 StartRunOperation starts logging a run
func (l *Logger) StartRunOperation(ctx context.Context, op RunOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.entries = 0

	// Print run header
	fmt.Fprintf(l.console, "[%s %s]\n",
		op.Mode,
		color.New(color.FgCyan).Sprint(op.Root))

	if op.Changeset != "" {
		fmt.Fprintf(l.console, "%s %s\n",
			color.New(color.FgMagenta).Sprint("◆"),
			color.New(color.Bold).Sprint(op.Changeset))
	}

	// Log to zerolog
	l.zlog.Info().
		Str("mode", op.Mode.String()).
		Str("root", op.Root).
		Str("changeset", op.Changeset).
		Msg("starting run")
}

// 📝 EndRunOperation ends the current run
func (l *Logger) EndRunOperation(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	// Log summary
	l.zlog.Info().
		Str("mode", l.currentOp.Mode.String()).
		Int("files", l.entries).
		Msg("run complete")

	l.currentOp = nil
	l.entries = 0
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Raw writes pre-rendered output, such as a summary table
func (l *Logger) Raw(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.console, s)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("rewritesync")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 LogError logs a failed run through the formatter
func (l *Logger) LogError(err error) {
	if err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console, l.formatter.FormatError(err))
	l.zlog.Error().Err(err).Msg("run failed")
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
