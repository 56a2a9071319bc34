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
	"github.com/spf13/cobra"

	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
)

// NewRunCmd creates the run command
func NewRunCmd(ro *opts.RootOpts) *cobra.Command {
	flags := &campaignFlags{}

	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Rewrite files with the configured rule sets",
		Long: `Run applies every rule set to every file and writes back the files that changed.
It will:
1. Load the campaign file (or use --catalog alone)
2. Use the given paths, or discover files with the include globs
3. Fold each file through the rule sets in order
4. Write changed files atomically and print a per-file report

Files that fail to read or write, and rules that fail on a file, make the
command exit with status 1. Other files are still processed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := flags.execute(cmd, ro, args, false)
			return err
		},
	}

	flags.register(cmd)
	return cmd
}
