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
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
)

// NewCheckCmd creates the check command
func NewCheckCmd(ro *opts.RootOpts) *cobra.Command {
	flags := &campaignFlags{}

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report which files the rule sets would change, without writing",
		Long: `Check runs the campaign as a dry run. Nothing is written.
The command exits with status 1 when any file would change or failed, so it
can guard CI against files that were edited back into the old shape.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rep, err := flags.execute(cmd, ro, args, true)
			if err != nil {
				return err
			}
			if changed := rep.Changed(); len(changed) > 0 {
				return errors.Errorf("%w: %d of %d", ErrWouldChange, len(changed), rep.Len())
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
