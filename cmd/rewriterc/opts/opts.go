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

package opts

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rewriterc/pkg/config"
)

// 🎯 RootOpts holds the state shared by every command
type RootOpts struct {
	ConfigFile string // explicit --config, empty means look it up
	Debug      bool
	WorkDir    string // empty means the process working directory

	Stdout io.Writer
	Stderr io.Writer
}

// Dir returns the directory config lookup and relative paths start from.
func (o *RootOpts) Dir() (string, error) {
	if o.WorkDir != "" {
		return o.WorkDir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Errorf("getting working directory: %w", err)
	}
	return wd, nil
}

// 📝 LoadConfig loads the campaign file: the --config flag if set, otherwise
// the first file config.Find locates. The error wraps config.ErrNotFound when
// there is nothing to load.
func (o *RootOpts) LoadConfig(ctx context.Context) (*config.Config, error) {
	path := o.ConfigFile
	dir, err := o.Dir()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path, err = config.Find(dir)
		if err != nil {
			return nil, err
		}
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		return nil, errors.Errorf("loading config %s: %w", path, err)
	}
	return cfg, nil
}

// IsTerminal reports whether w is a terminal. Buffers and pipes are not.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
