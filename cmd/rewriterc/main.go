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
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rewriterc/cmd/rewriterc/commands"
	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
)

// exit codes
const (
	exitOK       = 0
	exitFailures = 1 // some files failed, or check found files to rewrite
	exitError    = 2 // the campaign could not start
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := run(ctx, &opts.RootOpts{Stdout: os.Stdout, Stderr: os.Stderr}, os.Args[1:])

	stop()
	os.Exit(code)
}

// run executes the command line and maps the result to an exit code
func run(ctx context.Context, ro *opts.RootOpts, args []string) int {
	rootCmd := newRootCmd(ro)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, commands.ErrFailures), errors.Is(err, commands.ErrWouldChange), errors.Is(err, commands.ErrRestoreFailures):
		// the summary already names the files
		fmt.Fprintln(ro.Stderr, pterm.Warning.Sprint(err.Error()))
		return exitFailures
	default:
		fmt.Fprintln(ro.Stderr, pterm.Error.Sprint(err.Error()))
		return exitError
	}
}
