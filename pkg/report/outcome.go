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
	"github.com/walteh/rewriterc/pkg/text"
)

// 📄 FileOutcome is the result of one file in one campaign run. It is not
// modified after it is added to a Report.
type FileOutcome struct {
	Path     string
	Original string
	Final    string
	Status   Status

	// AppliedRuleIDs lists rules that changed the content, in application
	// order, each at most once.
	AppliedRuleIDs []string
	// MatchCounts holds replaced occurrences per rule id for rules that matched.
	MatchCounts map[string]int
	// RuleFailures are occurrences a replace func could not rewrite. They
	// were left as they were.
	RuleFailures []*text.OccurrenceError
	// IdempotenceViolations lists "set/rule" entries that changed the content
	// again when the rewrite was applied a second time.
	IdempotenceViolations []string

	// Err is the read or write failure for the error statuses.
	Err error
}

// Failed reports whether the file hit an I/O error or a rule failure
func (o *FileOutcome) Failed() bool {
	return o.Status.IsError() || len(o.RuleFailures) > 0
}

// Changed reports whether the rules produced different content
func (o *FileOutcome) Changed() bool {
	return o.Original != o.Final
}

// Matches returns the total number of replaced occurrences
func (o *FileOutcome) Matches() int {
	n := 0
	for _, c := range o.MatchCounts {
		n += c
	}
	return n
}
