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
	"sort"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/walteh/rewriterc/pkg/report"
)

// 🎨 Display configuration
const (
	fileIndent  = 4  // spaces to indent file entries
	nameWidth   = 45 // Base width for filename
	statusWidth = 15 // Width for status text
)

// 🎯 Logger writes the per-file console lines of a campaign and mirrors them to zerolog
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	formatter report.Formatter
	mu        sync.Mutex
	files     int
	total     int
}

// 🏭 New creates a new logger
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:      zlog,
		console:   console,
		formatter: report.NewDefaultFormatter(),
		mu:        sync.Mutex{},
	}
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

func statusSymbol(s report.Status) (rune, color.Attribute) {
	switch s {
	case report.StatusRewritten:
		return '⟳', color.FgBlue
	case report.StatusWouldRewrite:
		return '~', color.FgYellow
	case report.StatusReadError, report.StatusWriteError:
		return '✗', color.FgRed
	case report.StatusSkipped:
		return '-', color.FgYellow
	default:
		return '•', color.FgCyan
	}
}

// 📝 formatOutcome formats one file outcome for display
func (l *Logger) formatOutcome(o *report.FileOutcome) string {
	symbol, symbolColor := statusSymbol(o.Status)

	statusColor := color.New(color.Faint)
	if o.Status.IsError() {
		statusColor = color.New(color.FgRed)
	} else if o.Changed() {
		statusColor = color.New(symbolColor)
	}

	var detail []string
	switch {
	case o.Err != nil:
		detail = append(detail, color.New(color.FgRed).Sprint(o.Err.Error()))
	case o.Matches() > 0:
		detail = append(detail, fmt.Sprintf("%d %s", o.Matches(), plural(o.Matches(), "match", "matches")))
	}
	if n := len(o.RuleFailures); n > 0 {
		detail = append(detail, color.New(color.FgYellow).Sprintf("%d %s", n, plural(n, "rule failure", "rule failures")))
	}
	if len(o.IdempotenceViolations) > 0 {
		detail = append(detail, color.New(color.FgYellow).Sprintf("not idempotent: %s", strings.Join(o.IdempotenceViolations, ", ")))
	}

	return strings.TrimRight(fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, o.Path),
		statusColor.Sprint(fmt.Sprintf("%-*s", statusWidth, o.Status.String())),
		strings.Join(detail, " • ")), " ")
}

// 📝 LogOutcome prints one file outcome. Safe to call from campaign workers.
func (l *Logger) LogOutcome(ctx context.Context, o *report.FileOutcome) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.files++
	fmt.Fprintln(l.console, l.formatOutcome(o))

	event := l.zlog.Debug()
	if o.Status.IsError() {
		event = l.zlog.Error().Err(o.Err)
	}
	if l.total > 0 {
		event = event.Str("progress", l.formatter.FormatProgress(l.files, l.total))
	}
	event.
		Str("file", o.Path).
		Str("status", o.Status.String()).
		Strs("rules", o.AppliedRuleIDs).
		Int("matches", o.Matches()).
		Int("rule_failures", len(o.RuleFailures)).
		Msg(l.formatter.FormatOutcome(o))
}

// Expect sets how many outcomes the current run will log, for progress fields.
func (l *Logger) Expect(total int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.total = total
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.files = 0
	l.total = 0
	name := color.New(color.Bold, color.FgCyan).Sprint("rewriterc")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📊 Summary renders the end-of-run table: one row per status plus totals,
// followed by the per-rule match counts.
func (l *Logger) Summary(rep *report.Report) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := rep.Summary()
	data := pterm.TableData{
		{"status", "files"},
		{report.StatusRewritten.String(), fmt.Sprint(s.Rewritten)},
		{report.StatusWouldRewrite.String(), fmt.Sprint(s.WouldRewrite)},
		{report.StatusUnchanged.String(), fmt.Sprint(s.Unchanged)},
		{report.StatusReadError.String(), fmt.Sprint(s.ReadErrors)},
		{report.StatusWriteError.String(), fmt.Sprint(s.WriteErrors)},
		{report.StatusSkipped.String(), fmt.Sprint(s.Skipped)},
		{"rule failures", fmt.Sprint(s.RuleFailures)},
		{"not idempotent", fmt.Sprint(s.IdempotenceViolations)},
		{"total", fmt.Sprint(s.Total)},
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
	if err != nil {
		// rendering only fails on malformed data; fall back to the plain line
		table = s.String()
	}
	fmt.Fprintln(l.console)
	fmt.Fprintln(l.console, table)

	if rules := ruleMatches(rep); len(rules) > 0 {
		rows := pterm.TableData{{"rule", "matches"}}
		for _, r := range rules {
			rows = append(rows, []string{r.id, fmt.Sprint(r.matches)})
		}
		if out, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender(); err == nil {
			fmt.Fprintln(l.console)
			fmt.Fprintln(l.console, out)
		}
	}

	if rep.Cancelled() {
		fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint("run cancelled, unscheduled files were skipped"))
	}

	l.zlog.Info().
		Int("total", s.Total).
		Int("rewritten", s.Rewritten).
		Int("would_rewrite", s.WouldRewrite).
		Int("unchanged", s.Unchanged).
		Int("read_errors", s.ReadErrors).
		Int("write_errors", s.WriteErrors).
		Int("skipped", s.Skipped).
		Int("rule_failures", s.RuleFailures).
		Bool("cancelled", rep.Cancelled()).
		Msg("campaign complete")
}

type ruleCount struct {
	id      string
	matches int
}

// ruleMatches totals match counts per rule id across the report, busiest first
func ruleMatches(rep *report.Report) []ruleCount {
	totals := map[string]int{}
	for _, o := range rep.Outcomes() {
		for id, n := range o.MatchCounts {
			totals[id] += n
		}
	}
	out := make([]ruleCount, 0, len(totals))
	for id, n := range totals {
		out = append(out, ruleCount{id: id, matches: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].matches != out[j].matches {
			return out[i].matches > out[j].matches
		}
		return out[i].id < out[j].id
	})
	return out
}

// 🔍 Diff prints a coloured line diff of the outcome. Unchanged outcomes print nothing.
func (l *Logger) Diff(o *report.FileOutcome) {
	lines := report.LineDiff(o.Original, o.Final)
	if lines == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bold := color.New(color.Bold)
	fmt.Fprintln(l.console, bold.Sprint("--- a/"+o.Path))
	fmt.Fprintln(l.console, bold.Sprint("+++ b/"+o.Path))
	for _, line := range lines {
		if line == nil {
			fmt.Fprintln(l.console, color.New(color.FgCyan).Sprint("@@ ... @@"))
			continue
		}
		text := report.OpPrefix(line.Op) + line.Text
		switch line.Op {
		case diffmatchpatch.DiffInsert:
			fmt.Fprintln(l.console, color.New(color.FgGreen).Sprint(text))
		case diffmatchpatch.DiffDelete:
			fmt.Fprintln(l.console, color.New(color.FgRed).Sprint(text))
		default:
			fmt.Fprintln(l.console, color.New(color.Faint).Sprint(text))
		}
	}
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
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

// Files reports how many outcomes were printed since the last Header.
func (l *Logger) Files() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.files
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
