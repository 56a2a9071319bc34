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

package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/campaign"
	"github.com/walteh/rewriterc/pkg/config"
	"github.com/walteh/rewriterc/pkg/discover"
	"github.com/walteh/rewriterc/pkg/fileio"
	"github.com/walteh/rewriterc/pkg/log"
	"github.com/walteh/rewriterc/pkg/report"
)

var (
	// ErrFailures means at least one file could not be read or written, or a rule failed on it.
	ErrFailures = errors.Base("campaign finished with failures")
	// ErrWouldChange means a dry run found files that are not yet rewritten.
	ErrWouldChange = errors.Base("files would change")
	// ErrRestoreFailures means at least one file could not be restored from its backup.
	ErrRestoreFailures = errors.Base("restore finished with failures")
)

// campaignFlags are shared by run and check
type campaignFlags struct {
	root              string
	concurrency       int
	catalog           string
	backup            bool
	verifyIdempotence bool
	json              bool
	diff              bool
}

func (f *campaignFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.root, "root", "", "directory include globs and relative paths are resolved against (overrides config)")
	cmd.Flags().IntVar(&f.concurrency, "concurrency", 0, "files processed in parallel, 0 uses GOMAXPROCS (overrides config)")
	cmd.Flags().StringVar(&f.catalog, "catalog", "", "built-in rule catalog to run, usable without a config file")
	cmd.Flags().BoolVar(&f.backup, "backup", false, "keep a .bak copy of every rewritten file")
	cmd.Flags().BoolVar(&f.verifyIdempotence, "verify-idempotence", false, "re-apply the rules to every result and flag rules that fire again")
	cmd.Flags().BoolVar(&f.json, "json", false, "write the report as JSON to stdout")
	cmd.Flags().BoolVar(&f.diff, "diff", false, "print a diff for every changed file")
}

// resolveConfig loads the campaign file and applies the flags that were set
func (f *campaignFlags) resolveConfig(ctx context.Context, cmd *cobra.Command, ro *opts.RootOpts) (*config.Config, error) {
	cfg, err := ro.LoadConfig(ctx)
	switch {
	case err == nil:
	case errors.Is(err, config.ErrNotFound) && f.catalog != "":
		zerolog.Ctx(ctx).Debug().Str("catalog", f.catalog).Msg("no config file, running catalog only")
		cfg = &config.Config{}
	default:
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("catalog") {
		cfg.Catalog = f.catalog
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = f.concurrency
	}
	if flags.Changed("backup") {
		cfg.Backup = f.backup
	}
	if flags.Changed("verify-idempotence") {
		cfg.VerifyIdempotence = f.verifyIdempotence
	}

	if flags.Changed("root") {
		cfg.Root = f.root
	}
	if cfg.Root, err = resolveRoot(ro, cfg.Root); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// resolveRoot makes root absolute against the working directory. An empty
// root is the working directory.
func resolveRoot(ro *opts.RootOpts, root string) (string, error) {
	dir, err := ro.Dir()
	if err != nil {
		return "", err
	}
	if root == "" {
		return dir, nil
	}
	if !filepath.IsAbs(root) {
		root = filepath.Join(dir, root)
	}
	return filepath.Clean(root), nil
}

// resolvePaths returns the explicit paths relative to the root where possible,
// or discovers them with the config's include and exclude globs.
func resolvePaths(ctx context.Context, ro *opts.RootOpts, cfg *config.Config, args []string) ([]string, error) {
	if len(args) == 0 {
		if len(cfg.Include) == 0 {
			return nil, errors.New("no paths given and the config has no include patterns")
		}
		return discover.Paths(ctx, discover.Options{
			Root:    cfg.Root,
			Include: cfg.Include,
			Exclude: cfg.Exclude,
		})
	}

	dir, err := ro.Dir()
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(args))
	for _, arg := range args {
		p := arg
		if !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		if rel, err := filepath.Rel(cfg.Root, p); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			p = filepath.ToSlash(rel)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// execute runs one campaign and prints its outcome. dryRun never writes.
func (f *campaignFlags) execute(cmd *cobra.Command, ro *opts.RootOpts, args []string, dryRun bool) (*report.Report, error) {
	ctx := cmd.Context()

	cfg, err := f.resolveConfig(ctx, cmd, ro)
	if err != nil {
		return nil, err
	}

	sets, err := cfg.Build()
	if err != nil {
		return nil, errors.Errorf("building rule sets: %w", err)
	}

	paths, err := resolvePaths(ctx, ro, cfg, args)
	if err != nil {
		return nil, errors.Errorf("resolving paths: %w", err)
	}

	var console io.Writer = ro.Stdout
	if f.json {
		console = ro.Stderr
	}
	logger := log.New(console, *zerolog.Ctx(ctx))
	ctx = log.NewContext(ctx, logger)

	c, err := campaign.New(sets, paths, campaign.Options{
		Concurrency:       cfg.Concurrency,
		DryRun:            dryRun,
		VerifyIdempotence: cfg.VerifyIdempotence,
		OnOutcome:         logger.LogOutcome,
	})
	if err != nil {
		return nil, errors.Errorf("creating campaign: %w", err)
	}

	verb := "rewriting"
	if dryRun {
		verb = "checking"
	}
	logger.Header(fmt.Sprintf("%s %d files with %d rule sets under %s", verb, len(c.Paths()), len(sets), cfg.Root))
	logger.Expect(len(c.Paths()))

	fs := fileio.New(cfg.Root, fileio.WithBackup(cfg.Backup))
	rep, err := c.Run(ctx, fs, fs)
	if err != nil {
		return nil, errors.Errorf("running campaign: %w", err)
	}

	if f.diff {
		for _, o := range rep.Changed() {
			logger.LogNewline()
			logger.Diff(o)
		}
	}
	logger.Summary(rep)

	if f.json {
		if err := rep.WriteJSON(ro.Stdout); err != nil {
			return rep, errors.Errorf("writing JSON report: %w", err)
		}
	}

	if rep.Cancelled() {
		return rep, errors.Errorf("run cancelled: %w", ctx.Err())
	}
	if rep.HasFailures() {
		return rep, errors.Errorf("%w: %s", ErrFailures, rep.Err())
	}
	return rep, nil
}
