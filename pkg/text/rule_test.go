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
	"strings"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func returnsOrReturnsAsync(m Match) (string, error) {
	method := "Returns"
	if strings.HasSuffix(m.Group(1), "Async") {
		method = "ReturnsAsync"
	}
	return ".Setup(x => x." + m.Group(1) + "())." + method + "(" + m.Group(2) + ");", nil
}

func TestRule_Apply(t *testing.T) {
	tests := []struct {
		name      string
		def       Definition
		input     string
		want      string
		wantCount int
	}{
		{
			name: "commented_assignment",
			def: Definition{
				ID:      "comment-id",
				Match:   MatchSpec{Pattern: `(\w+)\.Id = ([^;]+);`},
				Replace: ReplaceSpec{Template: `// \1.Id = \2; // removed`},
			},
			input:     "foo.Id = someExpr;",
			want:      "// foo.Id = someExpr; // removed",
			wantCount: 1,
		},
		{
			name: "literal_non_overlapping",
			def: Definition{
				ID:      "aa",
				Match:   MatchSpec{Literal: "aa"},
				Replace: ReplaceSpec{Template: "b"},
			},
			input:     "aaa",
			want:      "ba",
			wantCount: 1,
		},
		{
			name: "pattern_non_overlapping",
			def: Definition{
				ID:      "aa",
				Match:   MatchSpec{Pattern: "aa"},
				Replace: ReplaceSpec{Template: "b"},
			},
			input:     "aaa",
			want:      "ba",
			wantCount: 1,
		},
		{
			name: "literal_template_is_verbatim",
			def: Definition{
				ID:      "verbatim",
				Match:   MatchSpec{Literal: "x"},
				Replace: ReplaceSpec{Template: `\1$1`},
			},
			input:     "x-x",
			want:      `\1$1-\1$1`,
			wantCount: 2,
		},
		{
			name: "greedy_runs_to_last_brace",
			def: Definition{
				ID:      "braces",
				Match:   MatchSpec{Pattern: `\{.*\}`},
				Replace: ReplaceSpec{Template: "X"},
			},
			input:     "a{1}b{2}c",
			want:      "aXc",
			wantCount: 1,
		},
		{
			name: "lazy_stops_at_first_brace",
			def: Definition{
				ID:      "braces",
				Match:   MatchSpec{Pattern: `\{.*\}`, Lazy: true},
				Replace: ReplaceSpec{Template: "X"},
			},
			input:     "a{1}b{2}c",
			want:      "aXbXc",
			wantCount: 2,
		},
		{
			name: "dot_does_not_cross_lines_by_default",
			def: Definition{
				ID:      "span",
				Match:   MatchSpec{Pattern: `start.*end`},
				Replace: ReplaceSpec{Template: "X"},
			},
			input:     "start\nmid\nend",
			want:      "start\nmid\nend",
			wantCount: 0,
		},
		{
			name: "dot_all_crosses_lines",
			def: Definition{
				ID:      "span",
				Match:   MatchSpec{Pattern: `start.*end`, DotAll: true},
				Replace: ReplaceSpec{Template: "X"},
			},
			input:     "start\nmid\nend",
			want:      "X",
			wantCount: 1,
		},
		{
			name: "multiline_anchors",
			def: Definition{
				ID:      "indent",
				Match:   MatchSpec{Pattern: `^x`, Multiline: true},
				Replace: ReplaceSpec{Template: "  x"},
			},
			input:     "x\nx\n",
			want:      "  x\n  x\n",
			wantCount: 2,
		},
		{
			name: "brace_delimited_block_across_lines",
			def: Definition{
				ID:      "new-user",
				Match:   MatchSpec{Pattern: `new User\s*\{[^}]*\}`},
				Replace: ReplaceSpec{Template: "new User { Email = \"a\" }"},
			},
			input:     "var u = new User\n{\n    Id = 1,\n    Name = \"x\"\n};\nvar s = new UserSession { };",
			want:      "var u = new User { Email = \"a\" };\nvar s = new UserSession { };",
			wantCount: 1,
		},
		{
			name: "named_group_reference",
			def: Definition{
				ID:      "named",
				Match:   MatchSpec{Pattern: `(?P<obj>\w+)\.Name`},
				Replace: ReplaceSpec{Template: `\g<obj>.FirstName`},
			},
			input:     "user.Name",
			want:      "user.FirstName",
			wantCount: 1,
		},
		{
			name: "dollar_is_plain_text",
			def: Definition{
				ID:      "money",
				Match:   MatchSpec{Pattern: `(\d+) dollars`},
				Replace: ReplaceSpec{Template: `$\1`},
			},
			input:     "cost 5 dollars",
			want:      "cost $5",
			wantCount: 1,
		},
		{
			name: "escapes_in_template",
			def: Definition{
				ID:      "split",
				Match:   MatchSpec{Pattern: `;\s*`},
				Replace: ReplaceSpec{Template: `;\n\t`},
			},
			input:     "a; b",
			want:      "a;\n\tb",
			wantCount: 1,
		},
		{
			name: "python_template_escapes",
			def: Definition{
				ID:      "escapes",
				Match:   MatchSpec{Pattern: `(x)`},
				Replace: ReplaceSpec{Template: `[\0|\a\b\f\v|\101\0101|\g<0>\1]`},
			},
			input:     "x",
			want:      "[\x00|\a\b\f\v|A\x081|xx]",
			wantCount: 1,
		},
		{
			name: "func_picks_returns_async",
			def: Definition{
				ID:      "moq-returns",
				Match:   MatchSpec{Pattern: `\.Setup\(x => x\.(\w+)\(\)\)\.Returns(?:Async)?\((\w+)\);`},
				Replace: ReplaceSpec{Func: returnsOrReturnsAsync},
			},
			input:     "m.Setup(x => x.GetAsync()).Returns(user);\nm.Setup(x => x.Count()).ReturnsAsync(n);",
			want:      "m.Setup(x => x.GetAsync()).ReturnsAsync(user);\nm.Setup(x => x.Count()).Returns(n);",
			wantCount: 2,
		},
		{
			name: "when_guard_blocks",
			def: Definition{
				ID:      "guarded",
				Match:   MatchSpec{Literal: "a"},
				Replace: ReplaceSpec{Template: "b"},
				When:    "marker",
			},
			input:     "aaa",
			want:      "aaa",
			wantCount: 0,
		},
		{
			name: "unless_guard_blocks",
			def: Definition{
				ID:      "insert-using",
				Match:   MatchSpec{Pattern: `\A`},
				Replace: ReplaceSpec{Template: "using Moq;\n"},
				Unless:  "using Moq;",
			},
			input:     "using Moq;\nclass A {}",
			want:      "using Moq;\nclass A {}",
			wantCount: 0,
		},
		{
			name: "unless_guard_allows",
			def: Definition{
				ID:      "insert-using",
				Match:   MatchSpec{Pattern: `\A`},
				Replace: ReplaceSpec{Template: "using Moq;\n"},
				Unless:  "using Moq;",
			},
			input:     "class A {}",
			want:      "using Moq;\nclass A {}",
			wantCount: 1,
		},
		{
			name: "limit_caps_replacements",
			def: Definition{
				ID:      "first",
				Match:   MatchSpec{Pattern: `x`},
				Replace: ReplaceSpec{Template: "y"},
				Limit:   1,
			},
			input:     "xxx",
			want:      "yxx",
			wantCount: 1,
		},
		{
			name: "literal_limit_caps_replacements",
			def: Definition{
				ID:      "first",
				Match:   MatchSpec{Literal: "x"},
				Replace: ReplaceSpec{Template: "y"},
				Limit:   2,
			},
			input:     "xxx",
			want:      "yyx",
			wantCount: 2,
		},
		{
			name: "empty_template_deletes",
			def: Definition{
				ID:    "strip",
				Match: MatchSpec{Pattern: `\s*=>\s*default`},
			},
			input:     "It.IsAny<CancellationToken>() => default",
			want:      "It.IsAny<CancellationToken>()",
			wantCount: 1,
		},
		{
			name: "regexp2_lookahead",
			def: Definition{
				ID:      "lookahead",
				Match:   MatchSpec{Pattern: `foo(?=bar)`, Engine: EngineRegexp2},
				Replace: ReplaceSpec{Template: "X"},
			},
			input:     "foobar foobaz",
			want:      "Xbar foobaz",
			wantCount: 1,
		},
		{
			name: "regexp2_offsets_after_multibyte_runes",
			def: Definition{
				ID:      "lookahead",
				Match:   MatchSpec{Pattern: `foo(?=bar)`, Engine: EngineRegexp2},
				Replace: ReplaceSpec{Template: "X"},
			},
			input:     "äöü foobar ü foobar",
			want:      "äöü Xbar ü Xbar",
			wantCount: 2,
		},
		{
			name: "regexp2_named_group",
			def: Definition{
				ID:      "named",
				Match:   MatchSpec{Pattern: `(?<word>[a-z]+)!`, Engine: EngineRegexp2},
				Replace: ReplaceSpec{Template: `\g<word>?`},
			},
			input:     "hey! you!",
			want:      "hey? you?",
			wantCount: 2,
		},
		{
			name: "regexp2_backreference_in_pattern",
			def: Definition{
				ID:      "dupe",
				Match:   MatchSpec{Pattern: `\b(\w+) \1\b`, Engine: EngineRegexp2},
				Replace: ReplaceSpec{Template: `\1`},
			},
			input:     "the the cat",
			want:      "the cat",
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.def)
			require.NoError(t, err, "compiling rule should succeed")

			got, count := r.Apply(tt.input)
			assert.Equal(t, tt.want, got, "rewritten text should match")
			assert.Equal(t, tt.wantCount, count, "match count should match")
		})
	}
}

func TestRule_NoMatchReturnsInput(t *testing.T) {
	input := strings.Repeat("nothing to see here\n", 100)

	for _, def := range []Definition{
		{ID: "literal", Match: MatchSpec{Literal: "absent"}, Replace: ReplaceSpec{Template: "x"}},
		{ID: "pattern", Match: MatchSpec{Pattern: `absent\d`}, Replace: ReplaceSpec{Template: "x"}},
		{ID: "func", Match: MatchSpec{Pattern: `absent\d`}, Replace: ReplaceSpec{Func: func(Match) (string, error) { return "x", nil }}},
	} {
		t.Run(def.ID, func(t *testing.T) {
			r := MustNew(def)
			app := r.ApplyDetailed(input)
			assert.Equal(t, 0, app.Matches)
			assert.False(t, app.Changed)
			assert.Same(t, unsafe.StringData(input), unsafe.StringData(app.Text), "no-op should hand back the input string")
		})
	}
}

func TestRule_FixpointReplacementIsNotAChange(t *testing.T) {
	r := MustNew(Definition{
		ID:      "same",
		Match:   MatchSpec{Pattern: `ok`},
		Replace: ReplaceSpec{Template: "ok"},
	})

	input := "ok ok"
	app := r.ApplyDetailed(input)
	assert.Equal(t, 2, app.Matches)
	assert.False(t, app.Changed)
	assert.Equal(t, input, app.Text)
}

func TestRule_FuncFailures(t *testing.T) {
	tests := []struct {
		name      string
		fn        ReplaceFunc
		wantText  string
		wantCount int
		wantErr   string
	}{
		{
			name: "error_leaves_occurrence",
			fn: func(m Match) (string, error) {
				if m.Group(1) == "2" {
					return "", errors.New("cannot rewrite two")
				}
				return "n" + m.Group(1), nil
			},
			wantText:  "n1 v2 n3",
			wantCount: 2,
			wantErr:   "cannot rewrite two",
		},
		{
			name: "panic_is_recovered",
			fn: func(m Match) (string, error) {
				if m.Group(1) == "3" {
					panic("boom")
				}
				return "n" + m.Group(1), nil
			},
			wantText:  "n1 n2 v3",
			wantCount: 2,
			wantErr:   "replace func panicked: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := MustNew(Definition{
				ID:      "numbers",
				Match:   MatchSpec{Pattern: `v(\d)`},
				Replace: ReplaceSpec{Func: tt.fn},
			})

			app := r.ApplyDetailed("v1 v2 v3")
			assert.Equal(t, tt.wantText, app.Text)
			assert.Equal(t, tt.wantCount, app.Matches)
			require.Len(t, app.Failures, 1)
			assert.Equal(t, "numbers", app.Failures[0].RuleID)
			assert.Contains(t, app.Failures[0].Error(), tt.wantErr)
		})
	}
}

func TestRule_MatchGroups(t *testing.T) {
	var seen Match
	r := MustNew(Definition{
		ID:    "capture",
		Match: MatchSpec{Pattern: `(?P<obj>\w+)\.(\w+)(\?)?`},
		Replace: ReplaceSpec{Func: func(m Match) (string, error) {
			seen = m
			return m.Text, nil
		}},
	})

	r.Apply("xx user.Name yy")

	assert.Equal(t, "user.Name", seen.Text)
	assert.Equal(t, 3, seen.Index)
	assert.Equal(t, []string{"user.Name", "user", "Name", ""}, seen.Groups)
	assert.Equal(t, "user", seen.Named("obj"))
	assert.Equal(t, "", seen.Named("missing"))
	assert.Equal(t, "", seen.Group(10))
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name    string
		def     Definition
		wantIs  error
		wantErr string
	}{
		{
			name:   "missing_id",
			def:    Definition{Match: MatchSpec{Literal: "a"}},
			wantIs: ErrMissingID,
		},
		{
			name:   "no_matcher",
			def:    Definition{ID: "x"},
			wantIs: ErrNoMatcher,
		},
		{
			name:   "both_matchers",
			def:    Definition{ID: "x", Match: MatchSpec{Literal: "a", Pattern: "b"}},
			wantIs: ErrNoMatcher,
		},
		{
			name: "both_replacements",
			def: Definition{
				ID:      "x",
				Match:   MatchSpec{Pattern: "a"},
				Replace: ReplaceSpec{Template: "b", Func: func(Match) (string, error) { return "", nil }},
			},
			wantIs: ErrNoReplacement,
		},
		{
			name:   "negative_limit",
			def:    Definition{ID: "x", Match: MatchSpec{Pattern: "a"}, Limit: -1},
			wantIs: ErrNegativeLimit,
		},
		{
			name:    "bad_pattern",
			def:     Definition{ID: "x", Match: MatchSpec{Pattern: "(unclosed"}},
			wantErr: "compiling pattern",
		},
		{
			name:    "flags_on_literal",
			def:     Definition{ID: "x", Match: MatchSpec{Literal: "a", DotAll: true}},
			wantErr: "pattern flags have no effect",
		},
		{
			name:   "missing_group",
			def:    Definition{ID: "x", Match: MatchSpec{Pattern: `(a)(b)`}, Replace: ReplaceSpec{Template: `\3`}},
			wantIs: ErrBadTemplate,
		},
		{
			name:   "unknown_group_name",
			def:    Definition{ID: "x", Match: MatchSpec{Pattern: `(?P<a>x)`}, Replace: ReplaceSpec{Template: `\g<b>`}},
			wantIs: ErrUnknownGroupName,
		},
		{
			name:   "bad_escape",
			def:    Definition{ID: "x", Match: MatchSpec{Pattern: `a`}, Replace: ReplaceSpec{Template: `\q`}},
			wantIs: ErrBadTemplate,
		},
		{
			name:   "octal_escape_out_of_range",
			def:    Definition{ID: "x", Match: MatchSpec{Pattern: `a`}, Replace: ReplaceSpec{Template: `\400`}},
			wantIs: ErrBadTemplate,
		},
		{
			name:   "two_digit_group_is_not_octal",
			def:    Definition{ID: "x", Match: MatchSpec{Pattern: `(a)`}, Replace: ReplaceSpec{Template: `\12`}},
			wantIs: ErrBadTemplate,
		},
		{
			name:   "trailing_backslash",
			def:    Definition{ID: "x", Match: MatchSpec{Pattern: `a`}, Replace: ReplaceSpec{Template: `a\`}},
			wantIs: ErrBadTemplate,
		},
		{
			name:   "lazy_regexp2",
			def:    Definition{ID: "x", Match: MatchSpec{Pattern: `a.*b`, Lazy: true, Engine: EngineRegexp2}},
			wantIs: ErrLazyUnsupported,
		},
		{
			name:   "unknown_engine",
			def:    Definition{ID: "x", Match: MatchSpec{Pattern: `a`, Engine: "pcre"}},
			wantIs: ErrUnknownEngine,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.def)
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			if tt.wantErr != "" {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustNew(Definition{ID: "bad"})
	})
}
