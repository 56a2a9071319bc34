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
	"context"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

var (
	ErrNoParser = errors.Base("no parser for config file")
	ErrNotFound = errors.Base("no config file found")
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse decodes the config from bytes. filename is used in diagnostics.
	Parse(ctx context.Context, filename string, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🎯 Load reads, parses and validates a campaign file
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	return Parse(ctx, path, data)
}

// Parse picks a parser by the extension of filename and validates the result.
func Parse(ctx context.Context, filename string, data []byte) (*Config, error) {
	p := GetParser(filename)
	if p == nil {
		return nil, errors.Errorf("%w: %s", ErrNoParser, filename)
	}

	cfg, err := p.Parse(ctx, filename, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// DefaultNames are the file names Find looks for, in order.
var DefaultNames = []string{
	".rewriterc.yaml",
	".rewriterc.yml",
	".rewriterc.hcl",
	".rewriterc.json",
	".rewriterc.toml",
}

// 🔍 Find locates the campaign file for dir: the first of DefaultNames present
// in dir, then rewriterc/config.yaml under the XDG config directories.
func Find(dir string) (string, error) {
	for _, name := range DefaultNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}

	if p, err := xdg.SearchConfigFile(filepath.Join("rewriterc", "config.yaml")); err == nil {
		return p, nil
	}

	return "", errors.Errorf("%w in %s or the user config directory", ErrNotFound, dir)
}
