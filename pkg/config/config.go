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
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rewriterc/pkg/text"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.Base("invalid config")

// 📚 Config is a complete rewrite campaign: where the files are and which
// rule sets run over them, in order.
type Config struct {
	Root              string           `json:"root,omitempty" yaml:"root,omitempty" toml:"root,omitempty" hcl:"root,optional"`
	Include           []string         `json:"include,omitempty" yaml:"include,omitempty" toml:"include,omitempty" hcl:"include,optional"`
	Exclude           []string         `json:"exclude,omitempty" yaml:"exclude,omitempty" toml:"exclude,omitempty" hcl:"exclude,optional"`
	Concurrency       int              `json:"concurrency,omitempty" yaml:"concurrency,omitempty" toml:"concurrency,omitempty" hcl:"concurrency,optional"`
	Backup            bool             `json:"backup,omitempty" yaml:"backup,omitempty" toml:"backup,omitempty" hcl:"backup,optional"`
	VerifyIdempotence bool             `json:"verify_idempotence,omitempty" yaml:"verify_idempotence,omitempty" toml:"verify_idempotence,omitempty" hcl:"verify_idempotence,optional"`
	Catalog           string           `json:"catalog,omitempty" yaml:"catalog,omitempty" toml:"catalog,omitempty" hcl:"catalog,optional"`
	RuleSets          []*RuleSetConfig `json:"rule_sets,omitempty" yaml:"rule_sets,omitempty" toml:"rule_sets,omitempty" hcl:"rule_set,block"`
}

// 📦 RuleSetConfig is one named, ordered group of rules
type RuleSetConfig struct {
	Name        string        `json:"name" yaml:"name" toml:"name" hcl:"name,label"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty" hcl:"description,optional"`
	Files       []string      `json:"files,omitempty" yaml:"files,omitempty" toml:"files,omitempty" hcl:"files,optional"`
	Rules       []*RuleConfig `json:"rules" yaml:"rules" toml:"rules" hcl:"rule,block"`
}

// 🔄 RuleConfig is the file form of text.Definition. Replace funcs are named
// and resolved through the catalog registry.
type RuleConfig struct {
	ID string `json:"id" yaml:"id" toml:"id" hcl:"id,label"`

	Literal      string `json:"literal,omitempty" yaml:"literal,omitempty" toml:"literal,omitempty" hcl:"literal,optional"`
	Pattern      string `json:"pattern,omitempty" yaml:"pattern,omitempty" toml:"pattern,omitempty" hcl:"pattern,optional"`
	Multiline    bool   `json:"multiline,omitempty" yaml:"multiline,omitempty" toml:"multiline,omitempty" hcl:"multiline,optional"`
	DotAll       bool   `json:"dot_all,omitempty" yaml:"dot_all,omitempty" toml:"dot_all,omitempty" hcl:"dot_all,optional"`
	Lazy         bool   `json:"lazy,omitempty" yaml:"lazy,omitempty" toml:"lazy,omitempty" hcl:"lazy,optional"`
	IgnoreCase   bool   `json:"ignore_case,omitempty" yaml:"ignore_case,omitempty" toml:"ignore_case,omitempty" hcl:"ignore_case,optional"`
	Engine       string `json:"engine,omitempty" yaml:"engine,omitempty" toml:"engine,omitempty" hcl:"engine,optional"`
	MatchTimeout string `json:"match_timeout,omitempty" yaml:"match_timeout,omitempty" toml:"match_timeout,omitempty" hcl:"match_timeout,optional"`

	Replace     string   `json:"replace,omitempty" yaml:"replace,omitempty" toml:"replace,omitempty" hcl:"replace,optional"`
	ReplaceFunc string   `json:"replace_func,omitempty" yaml:"replace_func,omitempty" toml:"replace_func,omitempty" hcl:"replace_func,optional"`
	FuncArgs    []string `json:"func_args,omitempty" yaml:"func_args,omitempty" toml:"func_args,omitempty" hcl:"func_args,optional"`

	When   string `json:"when,omitempty" yaml:"when,omitempty" toml:"when,omitempty" hcl:"when,optional"`
	Unless string `json:"unless,omitempty" yaml:"unless,omitempty" toml:"unless,omitempty" hcl:"unless,optional"`
	Limit  int    `json:"limit,omitempty" yaml:"limit,omitempty" toml:"limit,omitempty" hcl:"limit,optional"`
}

// 🔍 Validate checks the campaign shape and fills defaults. Pattern syntax is
// checked later by Build, when the rules are compiled.
func (cfg *Config) Validate() error {
	if cfg.Catalog == "" && len(cfg.RuleSets) == 0 {
		return errors.Errorf("%w: either catalog or at least one rule_set is required", ErrInvalidConfig)
	}
	if cfg.Concurrency < 0 {
		return errors.Errorf("%w: concurrency must not be negative", ErrInvalidConfig)
	}

	if cfg.Root == "" {
		cfg.Root = "."
	}
	cfg.Root = filepath.Clean(cfg.Root)
	if cfg.Concurrency == 0 {
		cfg.Concurrency = runtime.GOMAXPROCS(0)
	}

	names := make(map[string]bool, len(cfg.RuleSets))
	for i, set := range cfg.RuleSets {
		if set == nil {
			return errors.Errorf("%w: rule_set %d is empty", ErrInvalidConfig, i)
		}
		if set.Name == "" {
			return errors.Errorf("%w: rule_set %d: name is required", ErrInvalidConfig, i)
		}
		if names[set.Name] {
			return errors.Errorf("%w: duplicate rule_set %s", ErrInvalidConfig, set.Name)
		}
		names[set.Name] = true

		if err := set.validate(); err != nil {
			return errors.Errorf("%w: rule_set %s: %s", ErrInvalidConfig, set.Name, err.Error())
		}
	}

	return nil
}

func (set *RuleSetConfig) validate() error {
	if len(set.Rules) == 0 {
		return errors.New("at least one rule is required")
	}
	ids := make(map[string]bool, len(set.Rules))
	for i, r := range set.Rules {
		if r == nil {
			return errors.Errorf("rule %d is empty", i)
		}
		if r.ID == "" {
			return errors.Errorf("rule %d: id is required", i)
		}
		if ids[r.ID] {
			return errors.Errorf("duplicate rule id %s", r.ID)
		}
		ids[r.ID] = true

		if err := r.validate(); err != nil {
			return errors.Errorf("rule %s: %w", r.ID, err)
		}
	}
	return nil
}

func (r *RuleConfig) validate() error {
	if (r.Literal == "") == (r.Pattern == "") {
		return errors.New("exactly one of literal or pattern is required")
	}
	switch text.Engine(r.Engine) {
	case "", text.EngineRE2, text.EngineRegexp2:
	default:
		return errors.Errorf("unknown engine %q", r.Engine)
	}
	if _, err := r.timeout(); err != nil {
		return err
	}
	if r.ReplaceFunc != "" && r.Replace != "" {
		return errors.New("replace and replace_func are mutually exclusive")
	}
	if r.ReplaceFunc == "" && len(r.FuncArgs) > 0 {
		return errors.New("func_args requires replace_func")
	}
	if r.Limit < 0 {
		return errors.New("limit must not be negative")
	}
	return nil
}

func (r *RuleConfig) timeout() (time.Duration, error) {
	if r.MatchTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.MatchTimeout)
	if err != nil {
		return 0, errors.Errorf("invalid match_timeout: %w", err)
	}
	if d <= 0 {
		return 0, errors.Errorf("match_timeout must be positive, got %s", r.MatchTimeout)
	}
	return d, nil
}

// 📝 String returns a one-line summary of the campaign
func (cfg *Config) String() string {
	source := fmt.Sprintf("%d rule sets", len(cfg.RuleSets))
	if cfg.Catalog != "" {
		source = fmt.Sprintf("catalog %s + %s", cfg.Catalog, source)
	}
	return fmt.Sprintf("%s over %s %v", source, cfg.Root, cfg.Include)
}
