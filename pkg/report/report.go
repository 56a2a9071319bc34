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
	"fmt"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// 📋 Report collects the outcome of every file in a campaign run. Outcomes
// arrive from concurrent workers; Add serializes them.
type Report struct {
	mu        sync.RWMutex
	order     []string
	declared  map[string]bool
	outcomes  map[string]*FileOutcome
	cancelled bool
}

// 🏭 New creates an empty report that lists outcomes in the order of paths
func New(paths []string) *Report {
	r := &Report{
		order:    make([]string, 0, len(paths)),
		declared: make(map[string]bool, len(paths)),
		outcomes: make(map[string]*FileOutcome, len(paths)),
	}
	for _, p := range paths {
		if r.declared[p] {
			continue
		}
		r.declared[p] = true
		r.order = append(r.order, p)
	}
	return r
}

// Add records an outcome. A path can only be recorded once.
func (r *Report) Add(o *FileOutcome) error {
	if o == nil {
		return errors.New("nil outcome")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.outcomes[o.Path]; ok {
		return errors.Errorf("outcome for %s already recorded", o.Path)
	}
	if !r.declared[o.Path] {
		r.declared[o.Path] = true
		r.order = append(r.order, o.Path)
	}
	r.outcomes[o.Path] = o
	return nil
}

// Get returns the outcome for path
func (r *Report) Get(path string) (*FileOutcome, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.outcomes[path]
	return o, ok
}

// Outcomes returns recorded outcomes in declared path order
func (r *Report) Outcomes() []*FileOutcome {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*FileOutcome, 0, len(r.outcomes))
	for _, p := range r.order {
		if o, ok := r.outcomes[p]; ok {
			out = append(out, o)
		}
	}
	return out
}

// Len returns the number of recorded outcomes
func (r *Report) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.outcomes)
}

// MarkCancelled flags the report as partial
func (r *Report) MarkCancelled() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelled = true
}

// Cancelled reports whether the run stopped before scheduling every path
func (r *Report) Cancelled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cancelled
}

// Changed returns outcomes whose content was (or would be) rewritten
func (r *Report) Changed() []*FileOutcome {
	var out []*FileOutcome
	for _, o := range r.Outcomes() {
		if o.Changed() {
			out = append(out, o)
		}
	}
	return out
}

// HasFailures reports whether any file hit a read, write or rule failure
func (r *Report) HasFailures() bool {
	for _, o := range r.Outcomes() {
		if o.Failed() {
			return true
		}
	}
	return false
}

// Err joins every file failure into one error, nil when there are none
func (r *Report) Err() error {
	var errs []error
	for _, o := range r.Outcomes() {
		if o.Err != nil {
			errs = append(errs, errors.Errorf("%s: %s: %w", o.Path, o.Status, o.Err))
		}
		for _, f := range o.RuleFailures {
			errs = append(errs, errors.Errorf("%s: %w", o.Path, f))
		}
	}
	return errors.Join(errs...)
}

// 📊 Summary counts outcomes by status
type Summary struct {
	Total                 int `json:"total"`
	Unchanged             int `json:"unchanged"`
	Rewritten             int `json:"rewritten"`
	WouldRewrite          int `json:"would_rewrite"`
	ReadErrors            int `json:"read_errors"`
	WriteErrors           int `json:"write_errors"`
	Skipped               int `json:"skipped"`
	RuleFailures          int `json:"rule_failures"`
	IdempotenceViolations int `json:"idempotence_violations"`
	Matches               int `json:"matches"`
}

// Summary counts the recorded outcomes
func (r *Report) Summary() Summary {
	var s Summary
	for _, o := range r.Outcomes() {
		s.Total++
		switch o.Status {
		case StatusUnchanged:
			s.Unchanged++
		case StatusRewritten:
			s.Rewritten++
		case StatusWouldRewrite:
			s.WouldRewrite++
		case StatusReadError:
			s.ReadErrors++
		case StatusWriteError:
			s.WriteErrors++
		case StatusSkipped:
			s.Skipped++
		}
		if len(o.RuleFailures) > 0 {
			s.RuleFailures++
		}
		if len(o.IdempotenceViolations) > 0 {
			s.IdempotenceViolations++
		}
		s.Matches += o.Matches()
	}
	return s
}

// Failed counts files with any failure
func (s Summary) Failed() int {
	return s.ReadErrors + s.WriteErrors + s.RuleFailures
}

func (s Summary) String() string {
	return fmt.Sprintf("%d files: %d rewritten, %d would rewrite, %d unchanged, %d read errors, %d write errors, %d with rule failures, %d skipped",
		s.Total, s.Rewritten, s.WouldRewrite, s.Unchanged, s.ReadErrors, s.WriteErrors, s.RuleFailures, s.Skipped)
}
