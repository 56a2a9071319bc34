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

// Package discover finds campaign target files under a root directory.
package discover

import (
	"context"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultExclude skips version control and build output directories
var DefaultExclude = []string{
	"**/.git/**",
	"**/bin/**",
	"**/obj/**",
	"**/node_modules/**",
}

// 🔍 Options select files under Root
type Options struct {
	// Root is the directory globs are evaluated against.
	Root string
	// Include globs, relative to Root, in doublestar syntax.
	Include []string
	// Exclude globs drop matching files. Nil means DefaultExclude.
	Exclude []string
	// FS overrides os.DirFS(Root), mostly for tests.
	FS fs.FS
}

// Paths returns the files matching any include glob and no exclude glob,
// relative to Root, slash separated, sorted and de-duplicated.
func Paths(ctx context.Context, opts Options) ([]string, error) {
	if len(opts.Include) == 0 {
		return nil, errors.Errorf("at least one include pattern is required")
	}

	exclude := opts.Exclude
	if exclude == nil {
		exclude = DefaultExclude
	}
	for _, p := range append(append([]string{}, opts.Include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("invalid pattern %q", p)
		}
	}

	fsys := opts.FS
	if fsys == nil {
		root := opts.Root
		if root == "" {
			root = "."
		}
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.Errorf("checking root: %w", err)
		}
		if !info.IsDir() {
			return nil, errors.Errorf("root %s is not a directory", root)
		}
		fsys = os.DirFS(root)
	}

	logger := zerolog.Ctx(ctx)
	seen := make(map[string]bool)
	var out []string

	for _, pattern := range opts.Include {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}
		matches, err := doublestar.Glob(fsys, path.Clean(pattern), doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Errorf("globbing %s: %w", pattern, err)
		}
		logger.Debug().Str("pattern", pattern).Int("matches", len(matches)).Msg("globbed include pattern")

		for _, m := range matches {
			if seen[m] || excluded(m, exclude) {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}

	sort.Strings(out)
	return out, nil
}

func excluded(p string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}
