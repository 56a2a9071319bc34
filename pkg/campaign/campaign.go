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
	"runtime"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/rewriterc/pkg/report"
	"github.com/walteh/rewriterc/pkg/text"
)

var (
	ErrNilRuleSet      = errors.Base("rule set is nil")
	ErrDuplicateRuleID = errors.Base("rule id used more than once")
	ErrEmptyPath       = errors.Base("empty path")
	ErrNoLoader        = errors.Base("loader is required")
	ErrNoWriter        = errors.Base("writer is required unless running dry")
)

// 📖 Loader reads the whole content of one file
type Loader interface {
	Load(ctx context.Context, path string) (string, error)
}

// ✍️ Writer replaces the content of one file. The write must be all or nothing.
type Writer interface {
	Write(ctx context.Context, path string, content string) error
}

// LoaderFunc adapts a function to Loader
type LoaderFunc func(ctx context.Context, path string) (string, error)

func (f LoaderFunc) Load(ctx context.Context, path string) (string, error) { return f(ctx, path) }

// WriterFunc adapts a function to Writer
type WriterFunc func(ctx context.Context, path string, content string) error

func (f WriterFunc) Write(ctx context.Context, path string, content string) error {
	return f(ctx, path, content)
}

// 🔧 Options tune a campaign run
type Options struct {
	// Concurrency bounds the number of files in flight. Zero or less means GOMAXPROCS.
	Concurrency int
	// DryRun computes every outcome without calling the writer.
	DryRun bool
	// VerifyIdempotence re-applies the rule sets to each rewritten file and
	// records rules that change it again.
	VerifyIdempotence bool
	// OnOutcome is called from worker goroutines as each file completes. It
	// must be safe for concurrent use.
	OnOutcome func(ctx context.Context, o *report.FileOutcome)
}

// 🎯 Campaign is an ordered list of rule sets run over an ordered list of paths
type Campaign struct {
	sets     []*text.RuleSet
	paths    []string
	opts     Options
	rewriter *FileRewriter
}

// 🏭 New validates the configuration and builds a campaign. Duplicate paths
// are dropped, keeping the first occurrence.
func New(sets []*text.RuleSet, paths []string, opts Options) (*Campaign, error) {
	ids := make(map[string]string)
	for i, s := range sets {
		if s == nil {
			return nil, errors.Errorf("rule set %d: %w", i, ErrNilRuleSet)
		}
		if err := s.Validate(); err != nil {
			return nil, errors.Errorf("validating rule set: %w", err)
		}
		for _, r := range s.Rules {
			if prev, ok := ids[r.ID()]; ok {
				return nil, errors.Errorf("%w: %s in %s and %s", ErrDuplicateRuleID, r.ID(), prev, s.Name)
			}
			ids[r.ID()] = s.Name
		}
	}

	seen := make(map[string]bool, len(paths))
	unique := make([]string, 0, len(paths))
	for i, p := range paths {
		if p == "" {
			return nil, errors.Errorf("path %d: %w", i, ErrEmptyPath)
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		unique = append(unique, p)
	}

	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.GOMAXPROCS(0)
	}

	return &Campaign{
		sets:  sets,
		paths: unique,
		opts:  opts,
		rewriter: &FileRewriter{
			Sets:              sets,
			DryRun:            opts.DryRun,
			VerifyIdempotence: opts.VerifyIdempotence,
		},
	}, nil
}

// RuleSets returns the rule sets in application order
func (c *Campaign) RuleSets() []*text.RuleSet { return c.sets }

// Paths returns the target paths in reporting order
func (c *Campaign) Paths() []string { return c.paths }

// Concurrency returns the worker limit in effect
func (c *Campaign) Concurrency() int { return c.opts.Concurrency }

// 🏃 Run rewrites every path on a bounded worker pool. A failing file never
// stops the run. When ctx is cancelled no new file is started, files in flight
// finish, and the remaining paths are reported as skipped.
func (c *Campaign) Run(ctx context.Context, loader Loader, writer Writer) (*report.Report, error) {
	if loader == nil {
		return nil, errors.WithStack(ErrNoLoader)
	}
	if writer == nil && !c.opts.DryRun {
		return nil, errors.WithStack(ErrNoWriter)
	}

	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Int("paths", len(c.paths)).
		Int("rule_sets", len(c.sets)).
		Int("concurrency", c.opts.Concurrency).
		Bool("dry_run", c.opts.DryRun).
		Msg("starting campaign")

	rep := report.New(c.paths)

	var g errgroup.Group
	g.SetLimit(c.opts.Concurrency)

	for i, path := range c.paths {
		if ctx.Err() != nil {
			c.skip(ctx, rep, c.paths[i:])
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				c.skip(ctx, rep, []string{path})
				return nil
			}
			c.record(ctx, rep, c.rewriter.Rewrite(ctx, loader, writer, path))
			return nil
		})
	}
	_ = g.Wait()

	logger.Debug().
		Str("summary", rep.Summary().String()).
		Bool("cancelled", rep.Cancelled()).
		Msg("campaign finished")

	return rep, nil
}

func (c *Campaign) skip(ctx context.Context, rep *report.Report, paths []string) {
	rep.MarkCancelled()
	for _, p := range paths {
		c.record(ctx, rep, &report.FileOutcome{Path: p, Status: report.StatusSkipped})
	}
}

func (c *Campaign) record(ctx context.Context, rep *report.Report, o *report.FileOutcome) {
	if err := rep.Add(o); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("path", o.Path).Msg("recording outcome")
		return
	}
	if c.opts.OnOutcome != nil {
		c.opts.OnOutcome(ctx, o)
	}
}
