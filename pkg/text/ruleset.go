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
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// 📚 RuleSet is one ordered pass of rules. Rule n always sees the output of
// rule n-1, so the order of Rules is part of the set's contract and should be
// explained in Description whenever rules depend on each other.
type RuleSet struct {
	Name        string
	Description string
	// Files are doublestar globs limiting which paths the set applies to.
	// An empty list applies the set to every path.
	Files []string
	Rules []*Rule
}

// NewRuleSet builds a set from rules in application order
func NewRuleSet(name string, rules ...*Rule) *RuleSet {
	return &RuleSet{Name: name, Rules: rules}
}

// 🔍 Validate checks the set can be applied
func (s *RuleSet) Validate() error {
	if s.Name == "" {
		return errors.Errorf("rule set name is required")
	}
	for _, pattern := range s.Files {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("rule set %s: invalid files pattern %q", s.Name, pattern)
		}
	}
	seen := make(map[string]bool, len(s.Rules))
	for i, r := range s.Rules {
		if r == nil {
			return errors.Errorf("rule set %s: rule %d is nil", s.Name, i)
		}
		if seen[r.ID()] {
			return errors.Errorf("rule set %s: duplicate rule id %s", s.Name, r.ID())
		}
		seen[r.ID()] = true
	}
	return nil
}

// AppliesTo reports whether the set should run for path
func (s *RuleSet) AppliesTo(path string) bool {
	if len(s.Files) == 0 {
		return true
	}
	path = filepath.ToSlash(path)
	for _, pattern := range s.Files {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}

// SetResult is the outcome of running a set over one buffer
type SetResult struct {
	Text         string
	Applications []Application
}

// MatchCounts returns per-rule match counts in rule order
func (r SetResult) MatchCounts() []int {
	counts := make([]int, len(r.Applications))
	for i, app := range r.Applications {
		counts[i] = app.Matches
	}
	return counts
}

// Changed reports whether any rule in the set altered the buffer
func (r SetResult) Changed() bool {
	for _, app := range r.Applications {
		if app.Changed {
			return true
		}
	}
	return false
}

// Apply threads text through every rule in order
func (s *RuleSet) Apply(text string) (string, []int) {
	res := s.ApplyDetailed(text)
	return res.Text, res.MatchCounts()
}

// ApplyDetailed threads text through every rule in order and keeps each rule's result
func (s *RuleSet) ApplyDetailed(text string) SetResult {
	res := SetResult{Text: text, Applications: make([]Application, 0, len(s.Rules))}
	for _, r := range s.Rules {
		app := r.ApplyDetailed(res.Text)
		res.Text = app.Text
		res.Applications = append(res.Applications, app)
	}
	return res
}
