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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func literal(id, from, to string) *Rule {
	return MustNew(Definition{ID: id, Match: MatchSpec{Literal: from}, Replace: ReplaceSpec{Template: to}})
}

func TestRuleSet_Apply(t *testing.T) {
	a := literal("a", "foo", "bar")
	b := literal("b", "bar", "baz")

	tests := []struct {
		name       string
		set        *RuleSet
		input      string
		want       string
		wantCounts []int
	}{
		{
			name:       "later_rule_sees_earlier_output",
			set:        NewRuleSet("ab", a, b),
			input:      "foo",
			want:       "baz",
			wantCounts: []int{1, 1},
		},
		{
			name:       "reversed_order_differs",
			set:        NewRuleSet("ba", b, a),
			input:      "foo",
			want:       "bar",
			wantCounts: []int{0, 1},
		},
		{
			name:       "empty_set_is_identity",
			set:        NewRuleSet("empty"),
			input:      "foo bar",
			want:       "foo bar",
			wantCounts: []int{},
		},
		{
			name:       "no_match_anywhere",
			set:        NewRuleSet("ab", a, b),
			input:      "qux",
			want:       "qux",
			wantCounts: []int{0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, counts := tt.set.Apply(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCounts, counts)
		})
	}
}

func TestRuleSet_ApplyDetailed(t *testing.T) {
	set := NewRuleSet("mixed",
		literal("noop", "same", "same"),
		literal("swap", "x", "y"),
	)

	res := set.ApplyDetailed("same x")
	require.Len(t, res.Applications, 2)
	assert.Equal(t, "same y", res.Text)
	assert.Equal(t, 1, res.Applications[0].Matches)
	assert.False(t, res.Applications[0].Changed, "replacing a literal with itself is not a change")
	assert.True(t, res.Applications[1].Changed)
	assert.True(t, res.Changed())

	res = set.ApplyDetailed("same")
	assert.False(t, res.Changed())
}

func TestRuleSet_Validate(t *testing.T) {
	tests := []struct {
		name    string
		set     *RuleSet
		wantErr string
	}{
		{
			name: "valid",
			set:  &RuleSet{Name: "ok", Files: []string{"**/*.cs"}, Rules: []*Rule{literal("a", "a", "b")}},
		},
		{
			name:    "missing_name",
			set:     &RuleSet{},
			wantErr: "name is required",
		},
		{
			name:    "bad_glob",
			set:     &RuleSet{Name: "bad", Files: []string{"[unclosed"}},
			wantErr: "invalid files pattern",
		},
		{
			name:    "nil_rule",
			set:     &RuleSet{Name: "nil", Rules: []*Rule{nil}},
			wantErr: "rule 0 is nil",
		},
		{
			name:    "duplicate_id",
			set:     NewRuleSet("dupe", literal("a", "a", "b"), literal("a", "c", "d")),
			wantErr: "duplicate rule id a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.set.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRuleSet_AppliesTo(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		path  string
		want  bool
	}{
		{name: "no_filter", path: "anything.txt", want: true},
		{name: "deep_match", files: []string{"**/*ControllerTests.cs"}, path: "src/Api.Tests/UserControllerTests.cs", want: true},
		{name: "no_match", files: []string{"**/*ControllerTests.cs"}, path: "src/Api.Tests/UserServiceTests.cs", want: false},
		{name: "any_of", files: []string{"*.go", "**/*.cs"}, path: "a/b.cs", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &RuleSet{Name: "s", Files: tt.files}
			assert.Equal(t, tt.want, s.AppliesTo(tt.path))
		})
	}
}
