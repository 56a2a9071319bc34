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

// Match is one occurrence handed to a ReplaceFunc.
type Match struct {
	// Text is the whole matched span.
	Text string
	// Groups holds every capture group in order. Groups[0] is the whole match
	// and groups that did not participate are empty.
	Groups []string
	// Index is the byte offset of the match in the scanned buffer.
	Index int

	names []string
}

// Group returns group i, or "" when it does not exist
func (m Match) Group(i int) string {
	if i < 0 || i >= len(m.Groups) {
		return ""
	}
	return m.Groups[i]
}

// Named returns the value of the named group, or "" when there is none
func (m Match) Named(name string) string {
	for i, n := range m.names {
		if n == name && name != "" {
			return m.Group(i)
		}
	}
	return ""
}

func newMatch(text string, s span, names []string) Match {
	groups := make([]string, len(s.groups)/2)
	for i := range groups {
		start, end := s.groups[2*i], s.groups[2*i+1]
		if start < 0 {
			continue
		}
		groups[i] = text[start:end]
	}
	return Match{
		Text:   text[s.start:s.end],
		Groups: groups,
		Index:  s.start,
		names:  names,
	}
}
