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

// Package catalog holds built-in rule catalogs and the named replace funcs
// that configuration files can refer to.
package catalog

import (
	"sort"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rewriterc/pkg/text"
)

var ErrUnknownCatalog = errors.Base("unknown catalog")

var catalogs = map[string]func() []*text.RuleSet{
	DotnetTests:       DotnetTestsRuleSets,
	DotnetTestHelpers: DotnetTestHelpersRuleSets,
}

// Lookup returns a fresh copy of the named catalog's rule sets
func Lookup(name string) ([]*text.RuleSet, error) {
	build, ok := catalogs[name]
	if !ok {
		return nil, errors.Errorf("%w: %s (known: %v)", ErrUnknownCatalog, name, Names())
	}
	return build(), nil
}

// Names lists the built-in catalogs, sorted
func Names() []string {
	names := make([]string, 0, len(catalogs))
	for name := range catalogs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
