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
	"regexp"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
	"gitlab.com/tozd/go/errors"
)

// span is one match. groups holds start/end byte offset pairs, -1 when a
// group did not participate; groups[0:2] is the whole match.
type span struct {
	start, end int
	groups     []int
}

type matcher interface {
	// find returns non-overlapping matches left to right, at most limit when limit > 0
	find(text string, limit int) ([]span, error)
	// groupNames has one entry per group including group 0; "" for unnamed groups
	groupNames() []string
}

type literalMatcher struct {
	literal string
}

func (m *literalMatcher) find(text string, limit int) ([]span, error) {
	var spans []span
	offset := 0
	for {
		i := strings.Index(text[offset:], m.literal)
		if i < 0 {
			break
		}
		start := offset + i
		end := start + len(m.literal)
		spans = append(spans, span{start: start, end: end, groups: []int{start, end}})
		if limit > 0 && len(spans) >= limit {
			break
		}
		offset = end
	}
	return spans, nil
}

func (m *literalMatcher) groupNames() []string { return []string{""} }

type re2Matcher struct {
	re *regexp.Regexp
}

func (m *re2Matcher) find(text string, limit int) ([]span, error) {
	n := -1
	if limit > 0 {
		n = limit
	}
	locs := m.re.FindAllStringSubmatchIndex(text, n)
	if len(locs) == 0 {
		return nil, nil
	}
	spans := make([]span, len(locs))
	for i, loc := range locs {
		spans[i] = span{start: loc[0], end: loc[1], groups: loc}
	}
	return spans, nil
}

func (m *re2Matcher) groupNames() []string { return m.re.SubexpNames() }

type regexp2Matcher struct {
	re    *regexp2.Regexp
	names []string
}

func (m *regexp2Matcher) find(text string, limit int) ([]span, error) {
	match, err := m.re.FindStringMatch(text)
	if err != nil {
		return nil, errors.Errorf("matching: %w", err)
	}
	if match == nil {
		return nil, nil
	}

	// regexp2 reports rune offsets
	offsets := runeOffsets(text)

	var spans []span
	for match != nil {
		groups := match.Groups()
		s := span{groups: make([]int, 2*len(groups))}
		for i, g := range groups {
			if len(g.Captures) == 0 {
				s.groups[2*i], s.groups[2*i+1] = -1, -1
				continue
			}
			s.groups[2*i] = offsets[g.Index]
			s.groups[2*i+1] = offsets[g.Index+g.Length]
		}
		s.start, s.end = s.groups[0], s.groups[1]
		spans = append(spans, s)

		if limit > 0 && len(spans) >= limit {
			break
		}
		match, err = m.re.FindNextMatch(match)
		if err != nil {
			return nil, errors.Errorf("matching: %w", err)
		}
	}
	return spans, nil
}

func (m *regexp2Matcher) groupNames() []string { return m.names }

func runeOffsets(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}

// 🔧 compilePattern builds the matcher for a pattern spec
func compilePattern(spec MatchSpec) (matcher, error) {
	switch spec.Engine {
	case "", EngineRE2:
		flags := ""
		if spec.Multiline {
			flags += "m"
		}
		if spec.DotAll {
			flags += "s"
		}
		if spec.Lazy {
			flags += "U"
		}
		if spec.IgnoreCase {
			flags += "i"
		}
		expr := spec.Pattern
		if flags != "" {
			expr = "(?" + flags + ")" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, errors.Errorf("compiling pattern: %w", err)
		}
		return &re2Matcher{re: re}, nil

	case EngineRegexp2:
		if spec.Lazy {
			return nil, errors.WithStack(ErrLazyUnsupported)
		}
		opts := regexp2.None
		if spec.Multiline {
			opts |= regexp2.Multiline
		}
		if spec.DotAll {
			opts |= regexp2.Singleline
		}
		if spec.IgnoreCase {
			opts |= regexp2.IgnoreCase
		}
		re, err := regexp2.Compile(spec.Pattern, opts)
		if err != nil {
			return nil, errors.Errorf("compiling pattern: %w", err)
		}
		re.MatchTimeout = spec.MatchTimeout
		if re.MatchTimeout <= 0 {
			re.MatchTimeout = DefaultMatchTimeout
		}
		return &regexp2Matcher{re: re, names: regexp2GroupNames(re)}, nil

	default:
		return nil, errors.Errorf("%w: %q", ErrUnknownEngine, spec.Engine)
	}
}

// regexp2GroupNames lines group names up with Match.Groups() order
func regexp2GroupNames(re *regexp2.Regexp) []string {
	nums := re.GetGroupNumbers()
	names := re.GetGroupNames()
	out := make([]string, len(nums))
	for i, num := range nums {
		if i >= len(names) {
			break
		}
		if names[i] != strconv.Itoa(num) {
			out[i] = names[i]
		}
	}
	return out
}
