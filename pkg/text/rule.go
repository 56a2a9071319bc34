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

package text

import (
	"fmt"
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

var (
	ErrNoMatcher        = errors.Base("rule needs exactly one of literal or pattern")
	ErrNoReplacement    = errors.Base("rule needs exactly one of template or func")
	ErrLazyUnsupported  = errors.Base("lazy matching is only supported by the re2 engine")
	ErrUnknownEngine    = errors.Base("unknown pattern engine")
	ErrMissingID        = errors.Base("rule id is required")
	ErrNegativeLimit    = errors.Base("rule limit must not be negative")
	ErrBadTemplate      = errors.Base("invalid replacement template")
	ErrUnknownGroupName = errors.Base("template references an unknown group")
)

// Engine selects the regular expression implementation behind a pattern rule.
type Engine string

const (
	// EngineRE2 is Go's regexp package. Linear time, no backtracking features.
	EngineRE2 Engine = "re2"
	// EngineRegexp2 is github.com/dlclark/regexp2. Supports lookaround and
	// backreferences inside the pattern, bounded by a match timeout.
	EngineRegexp2 Engine = "regexp2"
)

// DefaultMatchTimeout bounds a single regexp2 scan.
const DefaultMatchTimeout = 5 * time.Second

// 🔍 MatchSpec describes what a rule looks for
type MatchSpec struct {
	// Literal is a plain substring. Mutually exclusive with Pattern.
	Literal string
	// Pattern is a regular expression with optional named groups.
	Pattern string

	Multiline  bool // ^ and $ match at line boundaries
	DotAll     bool // . matches \n
	Lazy       bool // quantifiers are minimal unless marked greedy with ?
	IgnoreCase bool

	Engine       Engine        // empty means EngineRE2
	MatchTimeout time.Duration // regexp2 only, zero means DefaultMatchTimeout
}

// 🔄 ReplaceSpec describes what a match turns into
type ReplaceSpec struct {
	// Template is the replacement text. For pattern rules it may reference
	// groups with \1, \g<1> or \g<name>. For literal rules it is used verbatim.
	Template string
	// Func computes the replacement from the match. Mutually exclusive with Template.
	Func ReplaceFunc
}

// ReplaceFunc computes the substitute text for one occurrence. It must be pure.
// A returned error leaves that occurrence unreplaced.
type ReplaceFunc func(m Match) (string, error)

// Definition is the configuration a Rule is compiled from.
type Definition struct {
	ID      string
	Match   MatchSpec
	Replace ReplaceSpec

	// When makes the rule run only if the buffer contains this substring.
	When string
	// Unless skips the rule if the buffer already contains this substring.
	Unless string
	// Limit caps replacements per application. Zero replaces every match.
	Limit int
}

// 🎯 Rule is one compiled match-and-replace unit. It holds no mutable state
// and is safe to share between goroutines and files.
type Rule struct {
	def      Definition
	matcher  matcher
	template *template
	// fast path: literal match with literal replacement
	plain bool
}

// 🏭 New compiles a rule definition
func New(def Definition) (*Rule, error) {
	if def.ID == "" {
		return nil, errors.WithStack(ErrMissingID)
	}
	if (def.Match.Literal == "") == (def.Match.Pattern == "") {
		return nil, errors.Errorf("rule %s: %w", def.ID, ErrNoMatcher)
	}
	if def.Replace.Func != nil && def.Replace.Template != "" {
		return nil, errors.Errorf("rule %s: %w", def.ID, ErrNoReplacement)
	}
	if def.Limit < 0 {
		return nil, errors.Errorf("rule %s: %w", def.ID, ErrNegativeLimit)
	}

	r := &Rule{def: def}

	if def.Match.Literal != "" {
		if def.Match.Lazy || def.Match.Multiline || def.Match.DotAll || def.Match.IgnoreCase {
			return nil, errors.Errorf("rule %s: pattern flags have no effect on a literal match", def.ID)
		}
		r.matcher = &literalMatcher{literal: def.Match.Literal}
		r.plain = def.Replace.Func == nil
		return r, nil
	}

	m, err := compilePattern(def.Match)
	if err != nil {
		return nil, errors.Errorf("rule %s: %w", def.ID, err)
	}
	r.matcher = m

	if def.Replace.Func == nil {
		tmpl, err := compileTemplate(def.Replace.Template, m.groupNames())
		if err != nil {
			return nil, errors.Errorf("rule %s: %w", def.ID, err)
		}
		r.template = tmpl
	}

	return r, nil
}

// MustNew is New for statically defined catalogs. It panics on error.
func MustNew(def Definition) *Rule {
	r, err := New(def)
	if err != nil {
		panic(err)
	}
	return r
}

// ID returns the rule identifier
func (r *Rule) ID() string { return r.def.ID }

// Definition returns a copy of the definition the rule was compiled from
func (r *Rule) Definition() Definition { return r.def }

// String describes the rule for logs
func (r *Rule) String() string {
	if r.def.Match.Literal != "" {
		return fmt.Sprintf("%s: literal %q", r.def.ID, r.def.Match.Literal)
	}
	return fmt.Sprintf("%s: pattern %q", r.def.ID, r.def.Match.Pattern)
}

// 📊 Application is the outcome of running one rule over one buffer
type Application struct {
	RuleID string
	// Text is the buffer after the rule. It is the input string itself when nothing changed.
	Text string
	// Matches counts replaced occurrences.
	Matches int
	// Changed is true when Text differs from the input.
	Changed bool
	// Failures holds occurrences a ReplaceFunc could not replace, or a single
	// entry with Index -1 when the scan itself failed.
	Failures []*OccurrenceError
}

// Apply runs the rule once over text and returns the new text and the number
// of replaced occurrences. Failures are dropped; use ApplyDetailed to see them.
func (r *Rule) Apply(text string) (string, int) {
	app := r.ApplyDetailed(text)
	return app.Text, app.Matches
}

// ApplyDetailed runs the rule once over text. Matches are found left to right
// without overlap and replacement output is never rescanned.
func (r *Rule) ApplyDetailed(text string) Application {
	app := Application{RuleID: r.def.ID, Text: text}

	if !r.guardsAllow(text) {
		return app
	}

	if r.plain {
		n := strings.Count(text, r.def.Match.Literal)
		if n == 0 {
			return app
		}
		if r.def.Limit > 0 && n > r.def.Limit {
			n = r.def.Limit
		}
		app.Matches = n
		if r.def.Match.Literal != r.def.Replace.Template {
			app.Text = strings.Replace(text, r.def.Match.Literal, r.def.Replace.Template, n)
			app.Changed = true
		}
		return app
	}

	spans, err := r.matcher.find(text, r.def.Limit)
	if err != nil {
		app.Failures = append(app.Failures, &OccurrenceError{RuleID: r.def.ID, Index: -1, Err: err})
		return app
	}
	if len(spans) == 0 {
		return app
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, s := range spans {
		repl, err := r.replacement(text, s)
		if err != nil {
			app.Failures = append(app.Failures, &OccurrenceError{
				RuleID: r.def.ID,
				Index:  s.start,
				Match:  text[s.start:s.end],
				Err:    err,
			})
			continue
		}
		b.WriteString(text[last:s.start])
		b.WriteString(repl)
		last = s.end
		app.Matches++
		if repl != text[s.start:s.end] {
			app.Changed = true
		}
	}

	if !app.Changed {
		return app
	}
	b.WriteString(text[last:])
	app.Text = b.String()
	return app
}

func (r *Rule) guardsAllow(text string) bool {
	if r.def.When != "" && !strings.Contains(text, r.def.When) {
		return false
	}
	if r.def.Unless != "" && strings.Contains(text, r.def.Unless) {
		return false
	}
	return true
}

// replacement computes the text for one span, recovering from panicking funcs
func (r *Rule) replacement(text string, s span) (out string, err error) {
	if r.def.Replace.Func == nil {
		if r.template == nil {
			return r.def.Replace.Template, nil
		}
		return r.template.expand(text, s), nil
	}

	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("replace func panicked: %v", p)
		}
	}()

	return r.def.Replace.Func(newMatch(text, s, r.matcher.groupNames()))
}

// ❌ OccurrenceError is a rule-level failure
type OccurrenceError struct {
	RuleID string
	// Index is the byte offset of the occurrence, or -1 when the whole scan failed.
	Index int
	Match string
	Err   error
}

func (e *OccurrenceError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("rule %s: %v", e.RuleID, e.Err)
	}
	return fmt.Sprintf("rule %s at offset %d (%q): %v", e.RuleID, e.Index, e.Match, e.Err)
}

func (e *OccurrenceError) Unwrap() error { return e.Err }
