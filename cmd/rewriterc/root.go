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

package main

import (
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/walteh/rewriterc/cmd/rewriterc/commands"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
)

// newRootCmd builds the command tree around shared root options
func newRootCmd(ro *opts.RootOpts) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rewriterc",
		Short: "Apply ordered regex rewrite rules across a source tree",
		Long: `rewriterc runs campaigns of ordered text rewrite rules over many files.
Rules are regular expressions or literals with templates, grouped into rule
sets that run in a fixed order. Each file is rewritten independently; a file
that fails never stops the rest of the run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging(ro.Stderr, ro.Debug)
			cmd.SetContext(logger.WithContext(cmd.Context()))

			if !opts.IsTerminal(ro.Stdout) {
				color.NoColor = true
				pterm.DisableStyling()
			}
			return nil
		},
	}

	rootCmd.SetOut(ro.Stdout)
	rootCmd.SetErr(ro.Stderr)
	addRootFlags(rootCmd, ro)

	rootCmd.AddCommand(
		commands.NewRunCmd(ro),
		commands.NewCheckCmd(ro),
		commands.NewRulesCmd(ro),
		commands.NewRestoreCmd(ro),
		newVersionCmd(ro),
	)

	return rootCmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, ro *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&ro.ConfigFile, "config", "c", "", "campaign file (default: .rewriterc.{yaml,yml,hcl,json,toml}, then the user config dir)")
	cmd.PersistentFlags().BoolVarP(&ro.Debug, "debug", "d", false, "enable debug logging")
}

// setupLogging builds the diagnostic logger. It stays quiet below warnings
// unless debug is set, since per-file lines go through pkg/log.
func setupLogging(w io.Writer, debug bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !opts.IsTerminal(w),
		TimeFormat: time.Kitchen,
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}
