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

package report

import (
	"strings"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DiffContext is the number of unchanged lines kept around each change
const DiffContext = 3

// DiffLine is one line of a line diff
type DiffLine struct {
	Op   diffmatchpatch.Operation
	Text string
}

// 🔍 LineDiff computes a line-level diff between before and after. Runs of
// unchanged lines longer than the context are cut down and a nil entry marks
// each cut.
func LineDiff(before, after string) []*DiffLine {
	if before == after {
		return nil
	}

	a, b, table, ok := encodeLines(before, after)
	if !ok {
		return wholeDiff(before, after)
	}
	diffs := diffmatchpatch.New().DiffMainRunes(a, b, false)

	var out []*DiffLine
	for i, d := range diffs {
		split := decodeLines(d.Text, table)
		if d.Type != diffmatchpatch.DiffEqual {
			for _, l := range split {
				out = append(out, &DiffLine{Op: d.Type, Text: l})
			}
			continue
		}

		first, last := i == 0, i == len(diffs)-1
		head, tail := DiffContext, DiffContext
		if first {
			head = 0
		}
		if last {
			tail = 0
		}
		if len(split) <= head+tail {
			for _, l := range split {
				out = append(out, &DiffLine{Op: d.Type, Text: l})
			}
			continue
		}
		for _, l := range split[:head] {
			out = append(out, &DiffLine{Op: d.Type, Text: l})
		}
		out = append(out, nil)
		for _, l := range split[len(split)-tail:] {
			out = append(out, &DiffLine{Op: d.Type, Text: l})
		}
	}
	return out
}

// surrogate code points cannot survive a string round trip, so line ids skip them
const (
	surrogateLow  = 0xD800
	surrogateSpan = 0x800
	maxLineID     = unicode.MaxRune - surrogateSpan
)

func lineRune(id int) rune {
	if id >= surrogateLow {
		return rune(id + surrogateSpan)
	}
	return rune(id)
}

func runeLine(r rune) int {
	if r >= surrogateLow+surrogateSpan {
		return int(r) - surrogateSpan
	}
	return int(r)
}

// encodeLines maps every distinct line (newline included) of both texts to a
// single rune so the diff runs line by line. ok is false when there are more
// distinct lines than runes.
func encodeLines(before, after string) (a, b []rune, table []string, ok bool) {
	ids := map[string]int{}
	encode := func(s string) []rune {
		var out []rune
		for _, l := range strings.SplitAfter(s, "\n") {
			if l == "" {
				continue
			}
			id, seen := ids[l]
			if !seen {
				id = len(table)
				ids[l] = id
				table = append(table, l)
			}
			out = append(out, lineRune(id))
		}
		return out
	}
	a, b = encode(before), encode(after)
	return a, b, table, len(table) <= maxLineID
}

func decodeLines(s string, table []string) []string {
	var out []string
	for _, r := range s {
		out = append(out, strings.TrimSuffix(table[runeLine(r)], "\n"))
	}
	return out
}

func wholeDiff(before, after string) []*DiffLine {
	var out []*DiffLine
	for _, l := range splitLines(before) {
		out = append(out, &DiffLine{Op: diffmatchpatch.DiffDelete, Text: l})
	}
	for _, l := range splitLines(after) {
		out = append(out, &DiffLine{Op: diffmatchpatch.DiffInsert, Text: l})
	}
	return out
}

// Diff renders the outcome's change as a unified-style text diff. It returns
// "" when the content did not change.
func Diff(o *FileOutcome) string {
	lines := LineDiff(o.Original, o.Final)
	if lines == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("--- a/" + o.Path + "\n")
	b.WriteString("+++ b/" + o.Path + "\n")
	for _, l := range lines {
		if l == nil {
			b.WriteString("@@ ... @@\n")
			continue
		}
		b.WriteString(OpPrefix(l.Op))
		b.WriteString(l.Text)
		b.WriteString("\n")
	}
	return b.String()
}

// OpPrefix is the diff column marker for op
func OpPrefix(op diffmatchpatch.Operation) string {
	switch op {
	case diffmatchpatch.DiffInsert:
		return "+"
	case diffmatchpatch.DiffDelete:
		return "-"
	default:
		return " "
	}
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}
