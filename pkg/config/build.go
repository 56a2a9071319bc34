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

package config

import (
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rewriterc/pkg/catalog"
	"github.com/walteh/rewriterc/pkg/text"
)

// 🏭 Build compiles the campaign into rule sets: the named catalog first, then
// the configured sets in file order.
func (cfg *Config) Build() ([]*text.RuleSet, error) {
	var sets []*text.RuleSet

	if cfg.Catalog != "" {
		builtin, err := catalog.Lookup(cfg.Catalog)
		if err != nil {
			return nil, errors.Errorf("loading catalog: %w", err)
		}
		sets = append(sets, builtin...)
	}

	for _, sc := range cfg.RuleSets {
		set, err := sc.build()
		if err != nil {
			return nil, errors.Errorf("building rule_set %s: %w", sc.Name, err)
		}
		sets = append(sets, set)
	}

	return sets, nil
}

func (sc *RuleSetConfig) build() (*text.RuleSet, error) {
	set := &text.RuleSet{
		Name:        sc.Name,
		Description: sc.Description,
		Files:       sc.Files,
	}

	for _, rc := range sc.Rules {
		def, err := rc.Definition()
		if err != nil {
			return nil, err
		}
		rule, err := text.New(def)
		if err != nil {
			return nil, err
		}
		set.Rules = append(set.Rules, rule)
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// Definition converts the rule to its compiled form, resolving replace_func
// through the catalog registry.
func (rc *RuleConfig) Definition() (text.Definition, error) {
	timeout, err := rc.timeout()
	if err != nil {
		return text.Definition{}, errors.Errorf("rule %s: %w", rc.ID, err)
	}

	def := text.Definition{
		ID: rc.ID,
		Match: text.MatchSpec{
			Literal:      rc.Literal,
			Pattern:      rc.Pattern,
			Multiline:    rc.Multiline,
			DotAll:       rc.DotAll,
			Lazy:         rc.Lazy,
			IgnoreCase:   rc.IgnoreCase,
			Engine:       text.Engine(rc.Engine),
			MatchTimeout: timeout,
		},
		Replace: text.ReplaceSpec{Template: rc.Replace},
		When:    rc.When,
		Unless:  rc.Unless,
		Limit:   rc.Limit,
	}

	if rc.ReplaceFunc != "" {
		fn, err := catalog.LookupFunc(rc.ReplaceFunc, rc.FuncArgs...)
		if err != nil {
			return text.Definition{}, errors.Errorf("rule %s: %w", rc.ID, err)
		}
		def.Replace = text.ReplaceSpec{Func: fn}
	}

	return def, nil
}
