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
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rewriterc/cmd/rewriterc/opts"
	"github.com/walteh/rewriterc/pkg/catalog"
	"github.com/walteh/rewriterc/pkg/config"
	"github.com/walteh/rewriterc/pkg/text"
)

// NewRulesCmd creates the rules command
func NewRulesCmd(ro *opts.RootOpts) *cobra.Command {
	var (
		catalogName string
		raw         bool
		style       string
	)

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Show the rule sets a campaign would run, in order",
		Long: `Rules prints the configured rule sets as markdown: one section per set in
application order, one table row per rule. Without a config file, --catalog
selects a built-in catalog. Use --raw to print the markdown source.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := ro.LoadConfig(ctx)
			switch {
			case err == nil:
			case errors.Is(err, config.ErrNotFound) && catalogName != "":
				cfg = &config.Config{}
			case errors.Is(err, config.ErrNotFound):
				return errors.Errorf("%w; built-in catalogs: %s", err, strings.Join(catalog.Names(), ", "))
			default:
				return err
			}
			if cmd.Flags().Changed("catalog") {
				cfg.Catalog = catalogName
			}

			sets, err := cfg.Build()
			if err != nil {
				return errors.Errorf("building rule sets: %w", err)
			}

			md := RulesMarkdown(sets)
			if raw || !opts.IsTerminal(ro.Stdout) && !cmd.Flags().Changed("style") {
				_, err := fmt.Fprint(ro.Stdout, md)
				return errors.WithStack(err)
			}

			rendered, err := renderMarkdown(md, style)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(ro.Stdout, rendered)
			return errors.WithStack(err)
		},
	}

	cmd.Flags().StringVar(&catalogName, "catalog", "", "built-in rule catalog to show")
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown source instead of rendering it")
	cmd.Flags().StringVar(&style, "style", "auto", `glamour style: "auto", "dark", "light", "notty" or a style file`)

	return cmd
}

func renderMarkdown(md, style string) (string, error) {
	var options []glamour.TermRendererOption
	if style != "" && style != "auto" {
		options = append(options, glamour.WithStylePath(style))
	} else {
		options = append(options, glamour.WithAutoStyle())
	}
	options = append(options, glamour.WithWordWrap(120))

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return "", errors.Errorf("creating markdown renderer: %w", err)
	}
	out, err := renderer.Render(md)
	if err != nil {
		return "", errors.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

// RulesMarkdown documents sets in application order
func RulesMarkdown(sets []*text.RuleSet) string {
	var b strings.Builder
	b.WriteString("# Rule sets\n\n")
	if len(sets) == 0 {
		b.WriteString("_No rule sets configured._\n")
		return b.String()
	}

	for i, set := range sets {
		fmt.Fprintf(&b, "## %d. %s\n\n", i+1, set.Name)
		if set.Description != "" {
			b.WriteString(set.Description + "\n\n")
		}
		if len(set.Files) > 0 {
			fmt.Fprintf(&b, "Applies to: %s\n\n", codeList(set.Files))
		}

		b.WriteString("| # | rule | match | replace | options |\n")
		b.WriteString("|---|------|-------|---------|---------|\n")
		for j, r := range set.Rules {
			def := r.Definition()
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
				j+1, def.ID, matchCell(def.Match), replaceCell(def), optionsCell(def))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func matchCell(m text.MatchSpec) string {
	if m.Literal != "" {
		return "literal " + code(m.Literal)
	}
	return code(m.Pattern)
}

func replaceCell(def text.Definition) string {
	if def.Replace.Func != nil {
		return "_func_"
	}
	if def.Replace.Template == "" {
		return "_delete_"
	}
	return code(def.Replace.Template)
}

func optionsCell(def text.Definition) string {
	var opts []string
	m := def.Match
	if m.Engine != "" {
		opts = append(opts, string(m.Engine))
	}
	for _, f := range []struct {
		on   bool
		name string
	}{
		{m.Multiline, "multiline"},
		{m.DotAll, "dot_all"},
		{m.Lazy, "lazy"},
		{m.IgnoreCase, "ignore_case"},
	} {
		if f.on {
			opts = append(opts, f.name)
		}
	}
	if def.When != "" {
		opts = append(opts, "when "+code(def.When))
	}
	if def.Unless != "" {
		opts = append(opts, "unless "+code(def.Unless))
	}
	if def.Limit > 0 {
		opts = append(opts, fmt.Sprintf("limit %d", def.Limit))
	}
	return strings.Join(opts, ", ")
}

func codeList(items []string) string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = code(s)
	}
	return strings.Join(out, ", ")
}

// code wraps s in a table-safe code span
func code(s string) string {
	s = strings.NewReplacer("|", `\|`, "\n", `\n`, "\t", `\t`).Replace(s)
	if strings.Contains(s, "`") {
		return "`` " + s + " ``"
	}
	return "`" + s + "`"
}
