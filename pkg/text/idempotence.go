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
)

// IdempotenceError reports rule sets whose second application still changes the text
type IdempotenceError struct {
	// Rules fired on the second pass, as "set/rule".
	Rules []string
	Once  string
	Twice string
}

func (e *IdempotenceError) Error() string {
	return fmt.Sprintf("rewrite is not idempotent: %s changed already rewritten text", strings.Join(e.Rules, ", "))
}

// Fold applies every set in order to text
func Fold(text string, sets ...*RuleSet) string {
	for _, s := range sets {
		text = s.ApplyDetailed(text).Text
	}
	return text
}

// 🧪 CheckIdempotent applies the sets to input twice and returns an
// *IdempotenceError when the second pass is not a no-op.
func CheckIdempotent(input string, sets ...*RuleSet) error {
	once := Fold(input, sets...)
	rules := SecondPassRules(once, sets...)
	if len(rules) == 0 {
		return nil
	}
	return &IdempotenceError{
		Rules: rules,
		Once:  once,
		Twice: Fold(once, sets...),
	}
}

// SecondPassRules applies the sets to already rewritten text and returns the
// rules, as "set/rule", that still change it.
func SecondPassRules(rewritten string, sets ...*RuleSet) []string {
	var fired []string
	text := rewritten
	for _, s := range sets {
		res := s.ApplyDetailed(text)
		for _, app := range res.Applications {
			if app.Changed {
				fired = append(fired, s.Name+"/"+app.RuleID)
			}
		}
		text = res.Text
	}
	return fired
}
