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
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// segment is either literal text (group < 0) or a group reference
type segment struct {
	literal string
	group   int
}

// template is a parsed replacement string.
//
// Syntax:
//
//	\1 .. \99          numbered group
//	\g<0>              whole match
//	\g<1> \g<name>     numbered or named group
//	\0 \0oo \ooo       octal character escape (three digits unless it starts with 0)
//	\\ \a \b \f \n \r \t \v  backslash and control characters
//
// These are the rules of Python's re.sub templates. A dollar sign is plain
// text. Escapes of other ASCII letters are errors, any other escaped character
// is kept with its backslash.
type template struct {
	segments []segment
}

func compileTemplate(src string, names []string) (*template, error) {
	t := &template{}
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			t.segments = append(t.segments, segment{literal: lit.String(), group: -1})
			lit.Reset()
		}
	}
	ref := func(n int) error {
		if n >= len(names) {
			return errors.Errorf("%w: group %d does not exist (pattern has %d)", ErrBadTemplate, n, len(names)-1)
		}
		flush()
		t.segments = append(t.segments, segment{group: n})
		return nil
	}

	for i := 0; i < len(src); i++ {
		c := src[i]
		if c != '\\' {
			lit.WriteByte(c)
			continue
		}
		if i+1 >= len(src) {
			return nil, errors.Errorf("%w: trailing backslash", ErrBadTemplate)
		}
		i++
		c = src[i]
		if b, ok := escapes[c]; ok {
			lit.WriteByte(b)
			continue
		}
		switch {
		case c == '0':
			// \0 starts an octal escape of up to three digits
			n, j := octal(src, i, 3)
			i = j
			lit.WriteRune(rune(n))
		case isDigit(c):
			if n, j := octal(src, i, 3); j == i+2 {
				if n > 0o377 {
					return nil, errors.Errorf("%w: octal escape \\%s out of range", ErrBadTemplate, src[i:j+1])
				}
				i = j
				lit.WriteRune(rune(n))
				continue
			}
			n := int(c - '0')
			if i+1 < len(src) && isDigit(src[i+1]) {
				i++
				n = n*10 + int(src[i]-'0')
			}
			if err := ref(n); err != nil {
				return nil, err
			}
		case c == 'g':
			end := strings.IndexByte(src[i:], '>')
			if i+1 >= len(src) || src[i+1] != '<' || end < 0 {
				return nil, errors.Errorf("%w: malformed \\g<...> reference", ErrBadTemplate)
			}
			name := src[i+2 : i+end]
			i += end
			if n, err := strconv.Atoi(name); err == nil {
				if err := ref(n); err != nil {
					return nil, err
				}
				continue
			}
			n := indexOf(names, name)
			if n < 0 {
				return nil, errors.Errorf("%w: %q", ErrUnknownGroupName, name)
			}
			if err := ref(n); err != nil {
				return nil, err
			}
		case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
			return nil, errors.Errorf("%w: bad escape \\%c", ErrBadTemplate, c)
		default:
			lit.WriteByte('\\')
			lit.WriteByte(c)
		}
	}
	flush()
	return t, nil
}

func (t *template) expand(text string, s span) string {
	if len(t.segments) == 1 && t.segments[0].group < 0 {
		return t.segments[0].literal
	}
	var b strings.Builder
	for _, seg := range t.segments {
		if seg.group < 0 {
			b.WriteString(seg.literal)
			continue
		}
		start, end := s.groups[2*seg.group], s.groups[2*seg.group+1]
		if start >= 0 {
			b.WriteString(text[start:end])
		}
	}
	return b.String()
}

var escapes = map[byte]byte{
	'\\': '\\',
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
}

// octal reads up to limit octal digits starting at src[i] and returns the value
// and the index of the last digit read
func octal(src string, i, limit int) (int, int) {
	n, j := 0, i
	for ; j < len(src) && j < i+limit && src[j] >= '0' && src[j] <= '7'; j++ {
		n = n*8 + int(src[j]-'0')
	}
	return n, j - 1
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func indexOf(names []string, name string) int {
	if name == "" {
		return -1
	}
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
