// Copyright 2026 The Plotnik Authors
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

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"plotnik.dev/plotnik/analyze"
	"plotnik.dev/plotnik/diag"
	"plotnik.dev/plotnik/syntax"
	"plotnik.dev/plotnik/token"
	"plotnik.dev/plotnik/types"
)

func newCheckCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "analyse a query and report its definitions' inferred types",
		Long: `check parses and analyses a query, printing the inferred result type
of each definition along with every diagnostic raised along the way. It
exits non-zero exactly when analysis produced an error-severity diagnostic,
the same gate emit applies before compiling (spec.md §7).`,
		Args: cobra.MaximumNArgs(1),
		RunE: mkRunE(c, runCheck),
	}
	return cmd
}

func analyzeArgs(args []string) (name string, file *token.File, res *analyze.Result, bag *diag.Bag, err error) {
	name, src, err := readSource(args)
	if err != nil {
		return name, nil, nil, nil, err
	}
	file = token.NewFile(name, src)

	cst, bag := syntax.Parse(src)
	res = analyze.Analyze(syntax.Root{N: cst}, bag)
	return name, file, res, bag, nil
}

func runCheck(c *Command, args []string) error {
	_, file, res, bag, err := analyzeArgs(args)
	if err != nil {
		exitOnErr(c, err, true)
		return nil
	}

	out := c.OutOrStdout()
	for _, d := range res.Symbols.Defs() {
		ti := res.DefInfo[d.ID]
		rec := res.Symbols.IsRecursive(d.ID)
		fmt.Fprintf(out, "%s: arity=%s flow=%s recursive=%v\n", d.Name, arityString(ti.Arity), flowString(ti.Flow), rec)
	}

	renderDiagnostics(c, file, bag)
	return nil
}

func arityString(a types.Arity) string {
	if a == types.Many {
		return "many"
	}
	return "one"
}

func flowString(f types.TypeFlow) string {
	switch f.Kind {
	case types.FlowScalar:
		return fmt.Sprintf("scalar(%d)", f.Type)
	case types.FlowBubble:
		return fmt.Sprintf("bubble(%d)", f.Type)
	default:
		return "void"
	}
}
