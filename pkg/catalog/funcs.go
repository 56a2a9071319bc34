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

package catalog

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rewriterc/pkg/text"
)

var ErrUnknownFunc = errors.Base("unknown replace func")

// 🔌 FuncFactory builds a replace func from its configured arguments
type FuncFactory func(args ...string) (text.ReplaceFunc, error)

var (
	funcsMu sync.RWMutex
	// 🗺️ funcs holds the replace funcs config files can name
	funcs = map[string]FuncFactory{
		"moq-returns":         noArgs("moq-returns", MoqReturns),
		"keep-arguments":      keepArgumentsFactory,
		"keep-first-argument": fixedArgs(keepArgumentsFactory, "1"),
		"coalesce-nullable":   coalesceFactory,
	}
)

// 📝 RegisterFunc adds a named replace func
func RegisterFunc(name string, f FuncFactory) error {
	funcsMu.Lock()
	defer funcsMu.Unlock()

	if _, ok := funcs[name]; ok {
		return errors.Errorf("replace func %s already registered", name)
	}
	funcs[name] = f
	return nil
}

// 🎯 LookupFunc builds the named replace func
func LookupFunc(name string, args ...string) (text.ReplaceFunc, error) {
	funcsMu.RLock()
	f, ok := funcs[name]
	funcsMu.RUnlock()

	if !ok {
		return nil, errors.Errorf("%w: %s", ErrUnknownFunc, name)
	}
	fn, err := f(args...)
	if err != nil {
		return nil, errors.Errorf("replace func %s: %w", name, err)
	}
	return fn, nil
}

// FuncNames lists registered replace funcs, sorted
func FuncNames() []string {
	funcsMu.RLock()
	defer funcsMu.RUnlock()

	names := make([]string, 0, len(funcs))
	for name := range funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func noArgs(name string, fn text.ReplaceFunc) FuncFactory {
	return func(args ...string) (text.ReplaceFunc, error) {
		if len(args) > 0 {
			return nil, errors.Errorf("%s takes no arguments", name)
		}
		return fn, nil
	}
}

func fixedArgs(f FuncFactory, fixed ...string) FuncFactory {
	return func(args ...string) (text.ReplaceFunc, error) {
		if len(args) > 0 {
			return nil, errors.Errorf("takes no arguments")
		}
		return f(fixed...)
	}
}

// MoqReturns rewrites a Moq setup to the returns call that matches the
// method: ReturnsAsync for methods ending in Async, Returns otherwise.
//
// Groups: 1 lambda parameter, 2 method name, 3 argument list. The match must
// end right after the opening parenthesis of the returns call.
func MoqReturns(m text.Match) (string, error) {
	param, method, args := m.Group(1), m.Group(2), strings.TrimSpace(m.Group(3))
	if param == "" || method == "" {
		return "", errors.Errorf("setup without lambda parameter or method: %q", m.Text)
	}
	returns := "Returns"
	if strings.HasSuffix(method, "Async") {
		returns = "ReturnsAsync"
	}
	return ".Setup(" + param + " => " + param + "." + method + "(" + args + "))." + returns + "(", nil
}

// KeepArguments truncates a call to its first n arguments and appends a
// trailing argument.
//
// Groups: 1 everything before the opening parenthesis, 2 argument list.
// Calls with n+1 arguments or fewer are returned unchanged.
func KeepArguments(n int, trailing string) text.ReplaceFunc {
	return func(m text.Match) (string, error) {
		args := splitArguments(m.Group(2))
		if len(args) <= n+1 {
			return m.Text, nil
		}
		kept := append(args[:n:n], trailing)
		return m.Group(1) + "(" + strings.Join(kept, ", ") + ")", nil
	}
}

func keepArgumentsFactory(args ...string) (text.ReplaceFunc, error) {
	if len(args) == 0 || len(args) > 2 {
		return nil, errors.Errorf("want count and optional trailing argument, got %d arguments", len(args))
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return nil, errors.Errorf("invalid argument count %q", args[0])
	}
	trailing := "It.IsAny<CancellationToken>()"
	if len(args) == 2 {
		trailing = args[1]
	}
	return KeepArguments(n, trailing), nil
}

// CoalesceNullable appends a null-coalescing fallback to an assignment.
//
// Groups: 1 everything up to and including "= ", 2 the assigned expression.
// Expressions that already coalesce are returned unchanged.
func CoalesceNullable(fallback string) text.ReplaceFunc {
	return func(m text.Match) (string, error) {
		expr := strings.TrimSpace(m.Group(2))
		if expr == "" {
			return "", errors.Errorf("empty expression in %q", m.Text)
		}
		if strings.Contains(expr, "??") {
			return m.Text, nil
		}
		return m.Group(1) + "(" + expr + ") ?? " + fallback + ";", nil
	}
}

func coalesceFactory(args ...string) (text.ReplaceFunc, error) {
	if len(args) != 1 || args[0] == "" {
		return nil, errors.Errorf("want exactly one fallback expression")
	}
	return CoalesceNullable(args[0]), nil
}

// splitArguments splits a call's argument list on top-level commas. String
// and char literals are skipped whole. A '<' only opens a type argument list
// when genericEnd finds its closing '>', so comparisons and the '>' of a
// lambda arrow never change the nesting depth.
func splitArguments(s string) []string {
	var (
		args  []string
		depth int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\'':
			i = literalEnd(s, i)
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case '<':
			if end := genericEnd(s, i); end > 0 {
				i = end
			}
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(s[start:]); last != "" || len(args) > 0 {
		args = append(args, last)
	}
	return args
}

// literalEnd returns the index of the quote closing the literal opened at i
func literalEnd(s string, i int) int {
	quote := s[i]
	verbatim := quote == '"' && i > 0 && s[i-1] == '@'
	for j := i + 1; j < len(s); j++ {
		switch {
		case s[j] == '\\' && !verbatim:
			j++
		case s[j] == quote && verbatim && j+1 < len(s) && s[j+1] == quote:
			j++
		case s[j] == quote:
			return j
		}
	}
	return len(s) - 1
}

// genericEnd returns the index of the '>' closing a type argument list opened
// at i, or -1 when the '<' is an operator. The list may hold only type names,
// and the token after it must be one that can follow a type.
func genericEnd(s string, i int) int {
	if prev := strings.TrimRight(s[:i], " "); prev == "" || !isIdent(prev[len(prev)-1]) {
		return -1
	}
	nested := 1
	for j := i + 1; j < len(s); j++ {
		c := s[j]
		switch {
		case c == '<':
			nested++
		case c == '>':
			nested--
			if nested == 0 {
				next := strings.TrimLeft(s[j+1:], " ")
				if next == "" || strings.IndexByte("().,;[]?{}>", next[0]) >= 0 {
					return j
				}
				return -1
			}
		case isIdent(c) || strings.IndexByte(" .,?[]", c) >= 0:
		default:
			return -1
		}
	}
	return -1
}

func isIdent(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
