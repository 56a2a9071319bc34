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
	"encoding/json"
	"io"

	"gitlab.com/tozd/go/errors"
)

type jsonOutcome struct {
	Path                  string         `json:"path"`
	Status                Status         `json:"status"`
	AppliedRuleIDs        []string       `json:"applied_rules,omitempty"`
	MatchCounts           map[string]int `json:"match_counts,omitempty"`
	RuleFailures          []string       `json:"rule_failures,omitempty"`
	IdempotenceViolations []string       `json:"idempotence_violations,omitempty"`
	Error                 string         `json:"error,omitempty"`
}

type jsonReport struct {
	Cancelled bool          `json:"cancelled"`
	Summary   Summary       `json:"summary"`
	Files     []jsonOutcome `json:"files"`
}

// 💾 WriteJSON writes the report as indented JSON. File contents are omitted.
func (r *Report) WriteJSON(w io.Writer) error {
	out := jsonReport{
		Cancelled: r.Cancelled(),
		Summary:   r.Summary(),
		Files:     []jsonOutcome{},
	}
	for _, o := range r.Outcomes() {
		jo := jsonOutcome{
			Path:                  o.Path,
			Status:                o.Status,
			AppliedRuleIDs:        o.AppliedRuleIDs,
			MatchCounts:           o.MatchCounts,
			IdempotenceViolations: o.IdempotenceViolations,
		}
		for _, f := range o.RuleFailures {
			jo.RuleFailures = append(jo.RuleFailures, f.Error())
		}
		if o.Err != nil {
			jo.Error = o.Err.Error()
		}
		out.Files = append(out.Files, jo)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.Errorf("encoding report: %w", err)
	}
	return nil
}
