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
	"strings"
)

// Formatter turns outcomes into one-line user messages
type Formatter interface {
	FormatOutcome(o *FileOutcome) string
	FormatProgress(current, total int) string
}

// DefaultFormatter prefixes messages with an emoji per status
type DefaultFormatter struct{}

// NewDefaultFormatter creates a new DefaultFormatter
func NewDefaultFormatter() *DefaultFormatter {
	return &DefaultFormatter{}
}

// FormatOutcome formats a file outcome with emojis
func (f *DefaultFormatter) FormatOutcome(o *FileOutcome) string {
	var msg string
	switch o.Status {
	case StatusRewritten:
		msg = fmt.Sprintf("📝 Rewrote %s (%s)", o.Path, plural(o.Matches(), "match", "matches"))
	case StatusWouldRewrite:
		msg = fmt.Sprintf("🔎 Would rewrite %s (%s)", o.Path, plural(o.Matches(), "match", "matches"))
	case StatusReadError:
		msg = fmt.Sprintf("❌ Failed to read %s: %v", o.Path, o.Err)
	case StatusWriteError:
		msg = fmt.Sprintf("❌ Failed to write %s: %v", o.Path, o.Err)
	case StatusSkipped:
		msg = fmt.Sprintf("⏭️  Skipped %s", o.Path)
	default:
		msg = fmt.Sprintf("👍 Unchanged %s", o.Path)
	}
	if len(o.RuleFailures) > 0 {
		msg += fmt.Sprintf(" ⚠️  %s", plural(len(o.RuleFailures), "rule failure", "rule failures"))
	}
	if len(o.IdempotenceViolations) > 0 {
		msg += fmt.Sprintf(" 🔁 not idempotent: %s", strings.Join(o.IdempotenceViolations, ", "))
	}
	return msg
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
