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
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/config"
	"github.com/walteh/rewriterc/pkg/fileio"
	"github.com/walteh/rewriterc/pkg/log"
)

// NewRestoreCmd creates the restore command
func NewRestoreCmd(ro *opts.RootOpts) *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "restore [paths...]",
		Short: "Undo a --backup run by putting back the .bak copies",
		Long: `Restore writes every file's .bak copy back over it and removes the copy.
Without paths it restores the files matched by the config's include globs
that have a backup. Given paths must each have a backup; the others are still
restored and the command exits with status 1.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := ro.LoadConfig(ctx)
			switch {
			case err == nil:
			case errors.Is(err, config.ErrNotFound) && len(args) > 0:
				cfg = &config.Config{}
			default:
				return err
			}
			if cmd.Flags().Changed("root") {
				cfg.Root = root
			}
			if cfg.Root, err = resolveRoot(ro, cfg.Root); err != nil {
				return err
			}

			fs := fileio.New(cfg.Root)
			paths, err := resolvePaths(ctx, ro, cfg, args)
			if err != nil {
				return errors.Errorf("resolving paths: %w", err)
			}
			if len(args) == 0 {
				if paths, err = withBackups(cmd, fs, paths); err != nil {
					return err
				}
			}

			logger := log.New(ro.Stdout, *zerolog.Ctx(ctx))
			logger.Header(fmt.Sprintf("restoring %d files under %s", len(paths), cfg.Root))

			failed := 0
			for _, p := range paths {
				if err := ctx.Err(); err != nil {
					return errors.Errorf("restore cancelled: %w", err)
				}
				if err := fs.RestoreFile(ctx, p); err != nil {
					failed++
					logger.Errorf("%s: %v", p, err)
					continue
				}
				logger.Successf("restored %s", p)
			}

			if failed > 0 {
				return errors.Errorf("%w: %d of %d", ErrRestoreFailures, failed, len(paths))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "directory include globs and relative paths are resolved against (overrides config)")
	return cmd
}

// withBackups keeps the discovered paths that have a .bak copy
func withBackups(cmd *cobra.Command, fs *fileio.FileSystem, paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		ok, err := fs.HasBackup(cmd.Context(), p)
		if err != nil {
			return nil, errors.Errorf("%s: %w", p, err)
		}
		if ok {
			out = append(out, p)
		}
	}
	return out, nil
}
