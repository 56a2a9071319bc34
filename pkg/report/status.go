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
	"gitlab.com/tozd/go/errors"
)

// 📊 Status is the final state of one file after a campaign run
type Status int

const (
	StatusUnchanged    Status = iota // no rule changed the content
	StatusRewritten                  // content changed and was written back
	StatusWouldRewrite               // content changed, dry run skipped the write
	StatusReadError                  // loader failed, file skipped
	StatusWriteError                 // writer failed, computed content kept
	StatusSkipped                    // never scheduled because the run was cancelled
)

var statusNames = map[Status]string{
	StatusUnchanged:    "unchanged",
	StatusRewritten:    "rewritten",
	StatusWouldRewrite: "would-rewrite",
	StatusReadError:    "read-error",
	StatusWriteError:   "write-error",
	StatusSkipped:      "skipped",
}

// String returns a string representation of Status
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Status) UnmarshalText(b []byte) error {
	for st, name := range statusNames {
		if name == string(b) {
			*s = st
			return nil
		}
	}
	return errors.Errorf("unknown status %q", string(b))
}

// IsError reports whether the status is a read or write failure
func (s Status) IsError() bool {
	return s == StatusReadError || s == StatusWriteError
}
