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

package campaign

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rewriterc/pkg/report"
	"github.com/walteh/rewriterc/pkg/text"
)

// 🔄 FileRewriter runs the read, transform, compare, write protocol for one file
type FileRewriter struct {
	Sets              []*text.RuleSet
	DryRun            bool
	VerifyIdempotence bool
}

// Transform folds every rule set that applies to path over content. It does
// no I/O; the returned outcome has no status yet.
func (fr *FileRewriter) Transform(path, content string) *report.FileOutcome {
	o := &report.FileOutcome{
		Path:     path,
		Original: content,
		Final:    content,
	}

	applied := make(map[string]bool)
	var sets []*text.RuleSet
	for _, s := range fr.Sets {
		if !s.AppliesTo(path) {
			continue
		}
		sets = append(sets, s)

		res := s.ApplyDetailed(o.Final)
		o.Final = res.Text
		for _, app := range res.Applications {
			if app.Matches > 0 {
				if o.MatchCounts == nil {
					o.MatchCounts = make(map[string]int)
				}
				o.MatchCounts[app.RuleID] += app.Matches
			}
			if app.Changed && !applied[app.RuleID] {
				applied[app.RuleID] = true
				o.AppliedRuleIDs = append(o.AppliedRuleIDs, app.RuleID)
			}
			o.RuleFailures = append(o.RuleFailures, app.Failures...)
		}
	}

	if fr.VerifyIdempotence && o.Changed() {
		o.IdempotenceViolations = text.SecondPassRules(o.Final, sets...)
	}

	return o
}

// 📝 Rewrite loads path, transforms it and writes it back when it changed.
// Failures are reported on the outcome, never returned.
func (fr *FileRewriter) Rewrite(ctx context.Context, loader Loader, writer Writer, path string) *report.FileOutcome {
	logger := zerolog.Ctx(ctx).With().Str("path", path).Logger()

	content, err := loader.Load(ctx, path)
	if err != nil {
		logger.Debug().Err(err).Msg("load failed")
		return &report.FileOutcome{
			Path:   path,
			Status: report.StatusReadError,
			Err:    errors.Errorf("loading: %w", err),
		}
	}

	o := fr.Transform(path, content)

	for _, f := range o.RuleFailures {
		logger.Warn().Err(f).Str("rule", f.RuleID).Msg("occurrence left unreplaced")
	}
	if len(o.IdempotenceViolations) > 0 {
		logger.Warn().Strs("rules", o.IdempotenceViolations).Msg("rewrite is not idempotent")
	}

	switch {
	case !o.Changed():
		o.Status = report.StatusUnchanged
	case fr.DryRun:
		o.Status = report.StatusWouldRewrite
	default:
		if err := writer.Write(ctx, path, o.Final); err != nil {
			o.Status = report.StatusWriteError
			// the computed content is kept on the outcome; the diff shows what was lost
			logger.Debug().Err(err).Str("diff", report.Diff(o)).Msg("write failed")
			o.Err = errors.Errorf("writing: %w", err)
		} else {
			o.Status = report.StatusRewritten
		}
	}

	logger.Debug().
		Stringer("status", o.Status).
		Strs("applied", o.AppliedRuleIDs).
		Int("matches", o.Matches()).
		Msg("file processed")

	return o
}
